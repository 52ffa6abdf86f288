package amap

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleResponse = `{
  "status": "1",
  "info": "OK",
  "infocode": "10000",
  "districts": [
    {
      "adcode": "100000",
      "name": "中华人民共和国",
      "center": "116.3683244,39.915085",
      "level": "country",
      "districts": [
        {
          "adcode": "110000",
          "name": "北京市",
          "center": "116.407394,39.904211",
          "level": "province",
          "districts": []
        }
      ]
    }
  ]
}`

func TestDistrictResponseDecode(t *testing.T) {
	var r DistrictResponse
	require.NoError(t, json.Unmarshal([]byte(sampleResponse), &r))
	assert.Equal(t, "1", r.Status)
	require.Len(t, r.Districts, 1)
	root := r.Districts[0]
	assert.Equal(t, "100000", root.Adcode)
	assert.Equal(t, "country", root.Level)
	require.Len(t, root.Districts, 1)
	assert.Equal(t, "北京市", root.Districts[0].Name)
}

func TestParseCenter(t *testing.T) {
	d := District{Center: "116.3683244,39.915085"}
	lng, lat, ok := d.ParseCenter()
	require.True(t, ok)
	assert.InDelta(t, 116.3683244, lng, 1e-9)
	assert.InDelta(t, 39.915085, lat, 1e-9)

	// 高德对个别节点返回空或数组，解析失败不致命
	for _, bad := range []string{"", "[]", "116.4", "a,b"} {
		_, _, ok := District{Center: bad}.ParseCenter()
		assert.False(t, ok, "center %q", bad)
	}
}
