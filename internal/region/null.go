package region

import "database/sql"

func nullStr(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullInt(v int64) sql.NullInt64 {
	return sql.NullInt64{Int64: v, Valid: true}
}

func nullFloat(v float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: true}
}

// NullStr/NullInt：导入与拉取流程共用的可空值构造器
func NullStr(s string) sql.NullString  { return nullStr(s) }
func NullInt(v int64) sql.NullInt64    { return nullInt(v) }
func NullFloat(v float64) sql.NullFloat64 { return nullFloat(v) }
