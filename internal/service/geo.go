package service

import (
	"context"
	"errors"
	"math"
)

// EarthRadiusMeters 地球平均半径（米）
const EarthRadiusMeters = 6371000.0

// ── 定位故障 ──

var (
	ErrPermissionDenied    = errors.New("定位权限被拒绝")
	ErrPositionUnavailable = errors.New("无法获取当前位置")
	ErrPositionTimeout     = errors.New("定位超时")
	ErrPositionUnknown     = errors.New("定位发生未知错误")
)

// Coordinate 经纬度坐标（十进制度）
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// DistanceMeters 使用 haversine 公式计算两点间的大圆距离（米）
func DistanceMeters(a, b Coordinate) float64 {
	lat1 := toRadians(a.Latitude)
	lat2 := toRadians(b.Latitude)
	dLat := lat2 - lat1
	dLon := toRadians(b.Longitude - a.Longitude)

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLon*sinLon
	// 浮点误差可能使 h 略超出 [0,1]
	h = math.Min(1, math.Max(0, h))

	return EarthRadiusMeters * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// IsWithinRange 当前位置与锚点距离是否不超过阈值
func IsWithinRange(current, anchor Coordinate, thresholdMeters float64) bool {
	return DistanceMeters(current, anchor) <= thresholdMeters
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// ── 位置判定 ──

// LocationDecision 调用方在打卡前解析出的位置判定
type LocationDecision string

const (
	LocationWithinRange LocationDecision = "within_range"
	LocationOutOfRange  LocationDecision = "out_of_range"
	LocationUnknown     LocationDecision = "unknown"
)

// Fence 以锚点为圆心的地理围栏
type Fence struct {
	Anchor       Coordinate
	RadiusMeters float64
}

// Decide 根据已获取的坐标给出围栏判定
func (f Fence) Decide(current Coordinate) LocationDecision {
	if IsWithinRange(current, f.Anchor, f.RadiusMeters) {
		return LocationWithinRange
	}
	return LocationOutOfRange
}

// PositionProvider 一次性定位请求
// 失败时返回 ErrPermissionDenied / ErrPositionUnavailable / ErrPositionTimeout / ErrPositionUnknown
type PositionProvider interface {
	RequestPosition(ctx context.Context) (Coordinate, error)
}

// ResolveLocation 先完成定位，再交给同步的打卡操作
// 定位失败不阻断打卡：判定为 unknown，并把故障原因一并返回供调用方记录
func ResolveLocation(ctx context.Context, provider PositionProvider, fence Fence) (LocationDecision, error) {
	if provider == nil {
		return LocationUnknown, ErrPositionUnavailable
	}
	coord, err := provider.RequestPosition(ctx)
	if err != nil {
		return LocationUnknown, err
	}
	return fence.Decide(coord), nil
}

// ── 客户端上报的位置 ──

// StaticPosition 将客户端已完成的定位结果（坐标或故障原因）适配为 PositionProvider
type StaticPosition struct {
	Coord *Coordinate
	Fault string // permission_denied | position_unavailable | timeout | unknown
}

// RequestPosition 实现 PositionProvider
func (p StaticPosition) RequestPosition(ctx context.Context) (Coordinate, error) {
	if err := ctx.Err(); err != nil {
		return Coordinate{}, ErrPositionTimeout
	}
	if p.Fault != "" {
		return Coordinate{}, ParsePositionFault(p.Fault)
	}
	if p.Coord == nil {
		return Coordinate{}, ErrPositionUnavailable
	}
	if !validCoordinate(*p.Coord) {
		return Coordinate{}, ErrPositionUnavailable
	}
	return *p.Coord, nil
}

// ParsePositionFault 将上报的故障原因映射为定位错误
func ParsePositionFault(reason string) error {
	switch reason {
	case "permission_denied":
		return ErrPermissionDenied
	case "position_unavailable":
		return ErrPositionUnavailable
	case "timeout":
		return ErrPositionTimeout
	default:
		return ErrPositionUnknown
	}
}

func validCoordinate(c Coordinate) bool {
	if math.IsNaN(c.Latitude) || math.IsNaN(c.Longitude) {
		return false
	}
	return c.Latitude >= -90 && c.Latitude <= 90 && c.Longitude >= -180 && c.Longitude <= 180
}
