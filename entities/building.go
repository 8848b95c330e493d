package entities

import "strings"

// 建筑类型，查表时不区分大小写
const (
	BuildingFarm        = "Farm"
	BuildingFactory     = "Factory"
	BuildingResearchLab = "Research Lab"
	BuildingShop        = "Shop"
	BuildingMarket      = "Market"
	BuildingTownHall    = "Town Hall"
	BuildingHouse       = "House"
)

var buildingCosts = map[string]int{
	"farm":         20,
	"factory":      50,
	"research lab": 100,
	"shop":         30,
	"market":       40,
	"town hall":    60,
	"house":        10,
}

var buildingColors = map[string]string{
	"farm":         "green",
	"factory":      "red",
	"research lab": "blue",
	"shop":         "yellow",
	"market":       "purple",
	"town hall":    "orange",
	"house":        "brown",
}

// EmptySlotColor 空地块的渲染颜色
const EmptySlotColor = "lightgray"

// BuildingCost 返回建筑造价，未知类型为 0
func BuildingCost(name string) int {
	return buildingCosts[strings.ToLower(name)]
}

// KnownBuilding 判断是否为已登记的建筑类型
func KnownBuilding(name string) bool {
	_, ok := buildingCosts[strings.ToLower(name)]
	return ok
}

// BuildingColor 返回建筑的显示颜色，未知类型为灰色
func BuildingColor(name string) string {
	if color, ok := buildingColors[strings.ToLower(name)]; ok {
		return color
	}
	return "gray"
}

// SlotPosition 返回地块在 4x4 棋盘上的坐标 (x, z)
func SlotPosition(index int) (x, z float64) {
	return float64(index%FieldColumns) * SlotSpacing, float64(index/FieldColumns) * SlotSpacing
}
