package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"amap-kit/internal/amap"
	"amap-kit/internal/config"
	"amap-kit/internal/logger"
)

// 单次查询工具：逆地理（-location）、地理编码（-address）或 IP 定位（-ip），结果以 JSON 输出到标准输出
func main() {
	location := flag.String("location", "", `坐标 "lng,lat"，多个以 | 分隔`)
	radius := flag.Int("radius", -1, "逆地理搜索半径 0~3000 米")
	extensions := flag.String("extensions", "base", "base 或 all")
	poiType := flag.String("poitype", "", "extensions=all 时的 POI 类型，多个以 | 分隔")
	roadLevel := flag.Int("roadlevel", -1, "extensions=all 时的道路等级：0 全部，1 主干道")
	homeOrCorp := flag.Int("homeorcorp", -1, "extensions=all 时的排序优化：0 关闭，1 居家，2 公司")
	address := flag.String("address", "", "结构化地址（地理编码）")
	city := flag.String("city", "", "地理编码限定城市")
	ip := flag.String("ip", "", "IPv4 地址（IP 定位）")
	flag.Parse()

	cfg := config.Load(".env")
	l := logger.Setup()
	if cfg.AMapKey == "" {
		l.Error("amap_key_missing")
		os.Exit(1)
	}
	client := amap.NewClient(cfg.AMapKey,
		amap.WithBaseURL(cfg.AMapBaseURL),
		amap.WithPrivateKey(cfg.AMapPrivateKey),
		amap.WithHTTPClient(&http.Client{Timeout: cfg.AMapTimeout, Transport: logger.Transport(l, nil)}),
	)
	ctx, cancel := context.WithTimeout(context.Background(), cfg.AMapTimeout+time.Second)
	defer cancel()

	var (
		out any
		err error
	)
	switch {
	case *location != "":
		opts := amap.Options{}
		if *poiType != "" {
			opts["poi_type"] = *poiType
		}
		if *roadLevel >= 0 {
			opts["road_level"] = *roadLevel
		}
		if *homeOrCorp >= 0 {
			opts["home_or_corp"] = *homeOrCorp
		}
		var resp *amap.ReGeoCodeResponse
		if resp, err = regeo(ctx, client, *location, *radius, *extensions, opts); resp != nil {
			out = resp
		}
	case *address != "":
		var resp *amap.GeoCodeResponse
		if resp, err = geo(ctx, client, *address, *city); resp != nil {
			out = resp
		}
	case *ip != "":
		var resp *amap.IPResponse
		if resp, err = client.IP(ctx, *ip); resp != nil {
			out = resp
		}
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		var apiErr *amap.APIError
		if !errors.As(err, &apiErr) || out == nil {
			l.Error("amap_query_error", "err", err)
			os.Exit(1)
		}
		l.Warn("amap_status_error", "info", apiErr.Info, "infocode", apiErr.InfoCode)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func regeo(ctx context.Context, c *amap.Client, location string, radius int, extensions string, opts amap.Options) (*amap.ReGeoCodeResponse, error) {
	ext, err := amap.NewExtensions(extensions, opts)
	if err != nil {
		return nil, err
	}
	locs, err := amap.NormalizeLocations(location)
	if err != nil {
		return nil, err
	}
	args := amap.Args{"location": location, "extensions": ext, "batch": len(locs) > 1}
	if radius >= 0 {
		args["radius"] = radius
	}
	req, err := amap.NewReGeoCodeRequestParams(args)
	if err != nil {
		return nil, err
	}
	return c.ReGeoCode(ctx, req)
}

func geo(ctx context.Context, c *amap.Client, address, city string) (*amap.GeoCodeResponse, error) {
	args := amap.Args{"address": address}
	if city != "" {
		args["city"] = city
	}
	req, err := amap.NewGeoCodeRequestParams(args)
	if err != nil {
		return nil, err
	}
	return c.GeoCode(ctx, req)
}
