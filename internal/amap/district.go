package amap

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"adcode-db/internal/logger"
	"adcode-db/internal/metrics"
)

// 文档注释：高德行政区划查询响应结构
// 背景：对齐高德 district REST API 的返回字段，仅解析编码/名称/层级/中心点
// 与下级列表；用于一次性拉取全量区划树入库。
// 约束：status/infocode 用于错误判定；不在此处扩展对外模型。
type DistrictResponse struct {
	Status    string     `json:"status"`
	Info      string     `json:"info"`
	Infocode  string     `json:"infocode"`
	Districts []District `json:"districts"`
}

// District：一棵区划子树；Center 为 "lng,lat" 文本
type District struct {
	Adcode    string     `json:"adcode"`
	Name      string     `json:"name"`
	Center    string     `json:"center"`
	Level     string     `json:"level"`
	Districts []District `json:"districts"`
}

// ParseCenter：拆出经纬度；高德偶发返回空或 []，解析失败时返回 false
func (d District) ParseCenter() (lng, lat float64, ok bool) {
	parts := strings.Split(d.Center, ",")
	if len(parts) != 2 {
		return 0, 0, false
	}
	lng, err1 := strconv.ParseFloat(parts[0], 64)
	lat, err2 := strconv.ParseFloat(parts[1], 64)
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return lng, lat, true
}

// 文档注释：查询行政区划子树（REST）
// 为什么：初始数据集来自外部数据源的一次性拉取；与日常 dump/load 链路解耦，
// 避免把外部不确定性引入批量装载。
// 参数：
// - ctx：请求上下文，控制超时与取消；
// - client：HTTP 客户端，可传入共享实例；为空时使用 5s 超时的默认客户端；
// - key：高德 Web 服务 API 密钥，必填；
// - keywords：目标区划的 adcode 或名称；
// - subdistrict：返回的下级层数（0-3）。
// 返回：解析后的响应结构；当 status!="1" 时返回错误并附带 info 以便上层记录。
func QueryDistrict(ctx context.Context, client *http.Client, key, keywords string, subdistrict int) (*DistrictResponse, error) {
	if key == "" {
		return nil, errors.New("missing key")
	}
	q := url.Values{}
	q.Set("key", key)
	q.Set("keywords", keywords)
	q.Set("subdistrict", strconv.Itoa(subdistrict))
	q.Set("extensions", "base")
	u := "https://restapi.amap.com/v3/config/district?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	t0 := time.Now()
	metrics.FetchRequestsTotal.Inc()
	logger.L().Debug("district_req", "keywords", keywords, "subdistrict", subdistrict)
	resp, err := client.Do(req)
	if err != nil {
		logger.L().Error("district_http_error", "err", err)
		metrics.FetchFailTotal.Inc()
		return nil, err
	}
	defer resp.Body.Close()
	var r DistrictResponse
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		logger.L().Error("district_decode_error", "err", err)
		metrics.FetchFailTotal.Inc()
		return nil, err
	}
	dur := time.Since(t0).Milliseconds()
	metrics.FetchDurationMs.Observe(float64(dur))
	logger.L().Debug("district_resp", "keywords", keywords, "status", r.Status, "infocode", r.Infocode, "duration_ms", dur)
	if r.Status != "1" {
		metrics.FetchFailTotal.Inc()
		return &r, errors.New("amap error: " + r.Info)
	}
	return &r, nil
}
