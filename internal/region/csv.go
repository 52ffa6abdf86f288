package region

import (
	"database/sql"
	"fmt"
	"strconv"
)

// Columns：region 表列顺序；分区 CSV 的字段顺序必须与其完全一致
var Columns = []string{
	"code", "parent", "name", "level", "rank",
	"adcode", "post_code", "area_code", "ur_code",
	"municipality", "virtual", "dummy",
	"longitude", "latitude", "center",
	"province", "city", "county", "town", "village",
}

// 约束：空字符串表示 NULL；布尔用 t/f，与 PostgreSQL 文本输出一致
func fmtBool(b bool) string {
	if b {
		return "t"
	}
	return "f"
}

func parseBool(s string) (bool, error) {
	switch s {
	case "t", "true", "TRUE":
		return true, nil
	case "f", "false", "FALSE", "":
		return false, nil
	}
	return false, fmt.Errorf("bad bool %q", s)
}

// Fields：按列顺序序列化一条记录为 CSV 字段
func (r *Record) Fields() []string {
	out := make([]string, 0, len(Columns))
	out = append(out, strconv.FormatInt(r.Code, 10))
	if r.Parent.Valid {
		out = append(out, strconv.FormatInt(r.Parent.Int64, 10))
	} else {
		out = append(out, "")
	}
	out = append(out, r.Name, r.Level, strconv.Itoa(r.Rank))
	for _, ns := range []sql.NullString{r.Adcode, r.PostCode, r.AreaCode, r.URCode} {
		out = append(out, ns.String)
	}
	out = append(out, fmtBool(r.Municipality), fmtBool(r.Virtual), fmtBool(r.Dummy))
	if r.Longitude.Valid {
		out = append(out, strconv.FormatFloat(r.Longitude.Float64, 'f', -1, 64))
	} else {
		out = append(out, "")
	}
	if r.Latitude.Valid {
		out = append(out, strconv.FormatFloat(r.Latitude.Float64, 'f', -1, 64))
	} else {
		out = append(out, "")
	}
	for _, ns := range []sql.NullString{r.Center, r.Province, r.City, r.County, r.Town, r.Village} {
		out = append(out, ns.String)
	}
	return out
}

// FromFields：按列顺序反序列化 CSV 字段为记录
// 异常：字段数不符或数值解析失败时返回错误，由调用方中止整次装载
func FromFields(fields []string) (*Record, error) {
	if len(fields) != len(Columns) {
		return nil, fmt.Errorf("want %d fields, got %d", len(Columns), len(fields))
	}
	var r Record
	code, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("bad code %q: %w", fields[0], err)
	}
	r.Code = code
	if fields[1] != "" {
		p, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad parent %q: %w", fields[1], err)
		}
		r.Parent = nullInt(p)
	}
	r.Name = fields[2]
	r.Level = fields[3]
	rank, err := strconv.Atoi(fields[4])
	if err != nil {
		return nil, fmt.Errorf("bad rank %q: %w", fields[4], err)
	}
	r.Rank = rank
	r.Adcode = nullStr(fields[5])
	r.PostCode = nullStr(fields[6])
	r.AreaCode = nullStr(fields[7])
	r.URCode = nullStr(fields[8])
	if r.Municipality, err = parseBool(fields[9]); err != nil {
		return nil, err
	}
	if r.Virtual, err = parseBool(fields[10]); err != nil {
		return nil, err
	}
	if r.Dummy, err = parseBool(fields[11]); err != nil {
		return nil, err
	}
	if fields[12] != "" {
		v, err := strconv.ParseFloat(fields[12], 64)
		if err != nil {
			return nil, fmt.Errorf("bad longitude %q: %w", fields[12], err)
		}
		r.Longitude = nullFloat(v)
	}
	if fields[13] != "" {
		v, err := strconv.ParseFloat(fields[13], 64)
		if err != nil {
			return nil, fmt.Errorf("bad latitude %q: %w", fields[13], err)
		}
		r.Latitude = nullFloat(v)
	}
	r.Center = nullStr(fields[14])
	r.Province = nullStr(fields[15])
	r.City = nullStr(fields[16])
	r.County = nullStr(fields[17])
	r.Town = nullStr(fields[18])
	r.Village = nullStr(fields[19])
	return &r, nil
}
