package region

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyOf(t *testing.T) {
	// 12 位代码取高六位作分区键
	assert.Equal(t, int64(110000), KeyOf(110000000000))
	assert.Equal(t, int64(110101), KeyOf(110101000000))
	assert.Equal(t, int64(110101), KeyOf(110101001001))
	assert.Equal(t, int64(310000), KeyOf(310000000000))
	assert.Equal(t, int64(100000), KeyOf(100000000000))
}

func TestIsTopLevel(t *testing.T) {
	assert.True(t, IsTopLevel(110000000000))
	assert.True(t, IsTopLevel(110101000000))
	assert.False(t, IsTopLevel(110101001000))
	assert.False(t, IsTopLevel(110101001001))
}

// 每条记录恰好属于一个分区：键推导是 code 的确定函数，且村级记录
// 归入其县级子树的键
func TestPartitionMembership(t *testing.T) {
	codes := []int64{
		110000000000, // 北京市
		110101000000, // 东城区
		110101001000, // 东华门街道
		110101001001, // 多福巷社区
		310000000000, // 上海市
	}
	wantKeys := []int64{110000, 110101, 110101, 110101, 310000}
	for i, c := range codes {
		r := Record{Code: c}
		assert.Equal(t, wantKeys[i], r.PartitionKey(), "code %d", c)
	}
}

func TestRankLevelConsistency(t *testing.T) {
	assert.Equal(t, 0, RankOf(LevelCountry))
	assert.Equal(t, 3, RankOf(LevelCounty))
	assert.Equal(t, 5, RankOf(LevelVillage))
	assert.Equal(t, -1, RankOf("galaxy"))

	assert.True(t, ValidLevel(LevelTown, 4))
	assert.False(t, ValidLevel(LevelTown, 3))
	assert.False(t, ValidLevel("galaxy", 0))
}

func TestValidate(t *testing.T) {
	ok := Record{
		Code:   110101000000,
		Parent: sql.NullInt64{Int64: 110100000000, Valid: true},
		Name:   "东城区",
		Level:  LevelCounty,
		Rank:   3,
	}
	require.NoError(t, ok.Validate())

	root := Record{Code: 100000000000, Name: "中华人民共和国", Level: LevelCountry, Rank: 0}
	require.NoError(t, root.Validate())

	bad := ok
	bad.Rank = 2
	assert.Error(t, bad.Validate())

	selfRef := ok
	selfRef.Parent = sql.NullInt64{Int64: selfRef.Code, Valid: true}
	assert.Error(t, selfRef.Validate())

	orphan := ok
	orphan.Parent = sql.NullInt64{}
	assert.Error(t, orphan.Validate())
}
