// 包 ingest：坐标批量逆地理编码并写库的离线数据通道
package ingest

import (
	"bufio"
	"io"
	"strings"

	"amap-kit/internal/amap"
	"amap-kit/internal/logger"
	"amap-kit/internal/metrics"
)

// 文档注释：读取坐标输入
// 背景：每行一个 "lng,lat"；空行与 # 开头的注释行跳过；同一坐标（6 位小数后）只保留首次出现。
// 异常：无法解析的行记录告警并计入 skipped 指标，不中断读取。
func ReadLocations(r io.Reader) ([]amap.Location, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 1024), 1024*1024)
	seen := map[string]struct{}{}
	var out []amap.Location
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		loc, err := amap.ParseLocation(line)
		if err != nil {
			logger.L().Warn("input_bad_line", "line", n, "err", err)
			metrics.IngestSkippedTotal.WithLabelValues("bad_line").Inc()
			continue
		}
		k := loc.String()
		if _, ok := seen[k]; ok {
			metrics.IngestSkippedTotal.WithLabelValues("duplicate").Inc()
			continue
		}
		seen[k] = struct{}{}
		out = append(out, loc)
	}
	return out, sc.Err()
}

// Chunk 按 size 切分；size<=0 时整体为一块
func Chunk[T any](items []T, size int) [][]T {
	if len(items) == 0 {
		return nil
	}
	if size <= 0 {
		return [][]T{items}
	}
	out := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		out = append(out, items[start:end])
	}
	return out
}
