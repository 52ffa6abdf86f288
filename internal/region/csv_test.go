package region

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullRecord() *Record {
	return &Record{
		Code:         110101000000,
		Parent:       sql.NullInt64{Int64: 110100000000, Valid: true},
		Name:         "东城区",
		Level:        LevelCounty,
		Rank:         3,
		Adcode:       nullStr("110101"),
		PostCode:     nullStr("100010"),
		AreaCode:     nullStr("010"),
		URCode:       nullStr("111"),
		Municipality: false,
		Virtual:      false,
		Dummy:        false,
		Longitude:    nullFloat(116.416357),
		Latitude:     nullFloat(39.928353),
		Center:       nullStr("(116.416357,39.928353)"),
		Province:     nullStr("北京市"),
		City:         nullStr("北京市"),
		County:       nullStr("东城区"),
	}
}

func TestFieldsColumnOrder(t *testing.T) {
	r := fullRecord()
	fields := r.Fields()
	require.Len(t, fields, len(Columns))
	assert.Equal(t, "110101000000", fields[0])
	assert.Equal(t, "110100000000", fields[1])
	assert.Equal(t, "东城区", fields[2])
	assert.Equal(t, "county", fields[3])
	assert.Equal(t, "3", fields[4])
	assert.Equal(t, "f", fields[9])
	assert.Equal(t, "(116.416357,39.928353)", fields[14])
	assert.Equal(t, "北京市", fields[15])
}

func TestFieldsNulls(t *testing.T) {
	r := &Record{Code: 100000000000, Name: "中华人民共和国", Level: LevelCountry, Rank: 0}
	fields := r.Fields()
	// parent 与全部可空字段序列化为空串
	assert.Equal(t, "", fields[1])
	assert.Equal(t, "", fields[5])
	assert.Equal(t, "", fields[12])
	assert.Equal(t, "", fields[14])
	assert.Equal(t, "", fields[19])
}

func TestRoundTrip(t *testing.T) {
	for _, r := range []*Record{
		fullRecord(),
		{Code: 100000000000, Name: "中华人民共和国", Level: LevelCountry, Rank: 0},
	} {
		got, err := FromFields(r.Fields())
		require.NoError(t, err)
		assert.Equal(t, r, got)
	}
}

func TestFromFieldsErrors(t *testing.T) {
	r := fullRecord()

	short := r.Fields()[:19]
	_, err := FromFields(short)
	assert.Error(t, err)

	badCode := r.Fields()
	badCode[0] = "abc"
	_, err = FromFields(badCode)
	assert.Error(t, err)

	badBool := r.Fields()
	badBool[10] = "yes"
	_, err = FromFields(badBool)
	assert.Error(t, err)

	badLng := r.Fields()
	badLng[12] = "east"
	_, err = FromFields(badLng)
	assert.Error(t, err)
}
