// district-fetch：从高德 district API 一次性拉取区划树并写入 region 表
// 背景：数据集的初始装载来源；日常的 dump/load 走分区 CSV，不依赖本工具
package main

import (
	"context"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"adcode-db/internal/amap"
	"adcode-db/internal/config"
	"adcode-db/internal/logger"
	"adcode-db/internal/region"
	"adcode-db/internal/store"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// 文档注释：简单令牌桶限流（每分钟）
// 背景：高德配额按日/分钟计，超出时阻塞等待下一分钟刷新
type minuteLimiter struct {
	capacity int
	used     int
	lastMin  int64
	mu       sync.Mutex
}

func (ml *minuteLimiter) allow() bool {
	ml.mu.Lock()
	defer ml.mu.Unlock()
	nowMin := time.Now().Unix() / 60
	if ml.lastMin != nowMin {
		ml.lastMin = nowMin
		ml.used = 0
	}
	if ml.used < ml.capacity {
		ml.used++
		return true
	}
	return false
}

func (ml *minuteLimiter) wait() {
	for !ml.allow() {
		time.Sleep(250 * time.Millisecond)
	}
}

// amapLevels：高德层级名到本表层级的映射；street 以下不在返回范围内
var amapLevels = map[string]string{
	"country":  region.LevelCountry,
	"province": region.LevelProvince,
	"city":     region.LevelCity,
	"district": region.LevelCounty,
	"street":   region.LevelTown,
}

// ancestors：递归过程中携带的袓先名称，用于反规范化列
type ancestors struct {
	province, city, county, town string
}

// toRecord：区划节点转表记录
// 约束：code = adcode × 1e6，补足 12 位；中心点缺失时经纬度与 center 置 NULL
func toRecord(d *amap.District, parent int64, anc ancestors) (*region.Record, bool) {
	adcode, err := strconv.ParseInt(d.Adcode, 10, 64)
	if err != nil {
		return nil, false
	}
	level, ok := amapLevels[d.Level]
	if !ok {
		return nil, false
	}
	r := &region.Record{
		Code:   adcode * 1_000_000,
		Name:   d.Name,
		Level:  level,
		Rank:   region.RankOf(level),
		Adcode: region.NullStr(d.Adcode),
	}
	if parent > 0 {
		r.Parent = region.NullInt(parent)
	}
	if lng, lat, ok := d.ParseCenter(); ok {
		r.Longitude = region.NullFloat(lng)
		r.Latitude = region.NullFloat(lat)
		r.Center = region.NullStr("(" + strconv.FormatFloat(lng, 'f', -1, 64) + "," + strconv.FormatFloat(lat, 'f', -1, 64) + ")")
	}
	// 直辖市在高德树里出现在省级；按名称后缀标记
	r.Municipality = level == region.LevelProvince && strings.HasSuffix(d.Name, "市")
	r.Province = region.NullStr(anc.province)
	r.City = region.NullStr(anc.city)
	r.County = region.NullStr(anc.county)
	r.Town = region.NullStr(anc.town)
	return r, true
}

// walk：先序遍历区划树写库，父节点先于子节点满足外键的立即检查
func walk(ctx context.Context, st *store.Store, d *amap.District, parent int64, anc ancestors) (int, error) {
	r, ok := toRecord(d, parent, anc)
	if !ok {
		logger.L().Warn("fetch_skip_node", "adcode", d.Adcode, "level", d.Level, "name", d.Name)
		return 0, nil
	}
	if err := st.Upsert(ctx, r); err != nil {
		return 0, err
	}
	next := anc
	switch r.Level {
	case region.LevelProvince:
		next.province = d.Name
	case region.LevelCity:
		next.city = d.Name
	case region.LevelCounty:
		next.county = d.Name
	case region.LevelTown:
		next.town = d.Name
	}
	n := 1
	for i := range d.Districts {
		child := &d.Districts[i]
		// 街道复用所属县级 adcode，推不出唯一 12 位代码，跳过
		if child.Adcode == d.Adcode {
			continue
		}
		if err := ctx.Err(); err != nil {
			return n, err
		}
		c, err := walk(ctx, st, child, r.Code, next)
		n += c
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

func main() {
	_ = godotenv.Load(".env")
	l := logger.Setup()
	l.Info("district_fetch_start")
	key := os.Getenv("AMAP_SERVER_KEY")
	if key == "" {
		l.Error("amap_key_missing")
		os.Exit(1)
	}
	cfg := config.FromEnv()
	st, err := store.Open(cfg)
	if err != nil {
		l.Error("db_open_error", "err", err)
		os.Exit(1)
	}
	defer st.Close()
	ctx := context.Background()
	if err := st.Ping(ctx); err != nil {
		l.Error("db_ping_error", "err", err)
		os.Exit(1)
	}

	ratePerMin := 100
	if v := os.Getenv("AMAP_RATE_LIMIT_PER_MIN"); v != "" {
		if n, e := strconv.Atoi(v); e == nil && n > 0 {
			ratePerMin = n
		}
	}
	limiter := &minuteLimiter{capacity: ratePerMin}
	client := &http.Client{Timeout: 5 * time.Second}

	keywords := os.Getenv("AMAP_ROOT_KEYWORDS")
	if keywords == "" {
		keywords = "100000"
	}

	// 一次请求最多返回三级；国家树覆盖到县级
	limiter.wait()
	resp, err := amap.QueryDistrict(ctx, client, key, keywords, 3)
	if err != nil {
		l.Error("district_fetch_error", "err", err)
		os.Exit(1)
	}
	if len(resp.Districts) == 0 {
		l.Error("district_empty_response")
		os.Exit(1)
	}
	total := 0
	for i := range resp.Districts {
		n, err := walk(ctx, st, &resp.Districts[i], 0, ancestors{})
		total += n
		if err != nil {
			l.Error("district_walk_error", "err", err)
			os.Exit(1)
		}
	}

	var cnt int64
	row := st.DB().QueryRow("SELECT COUNT(1) FROM " + cfg.Table)
	_ = row.Scan(&cnt)
	l.Info("district_fetch_done", "upserted", total, "table_rows", cnt)
}
