package entities

// Effect 卡牌建筑放置成功后带来的数值变化
type Effect struct {
	Resources int `json:"resources"`
	Residents int `json:"residents"`
}

func (e Effect) IsZero() bool {
	return e.Resources == 0 && e.Residents == 0
}

// Card 手牌中可购买的建筑
type Card struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Cost   int    `json:"cost"`
	Effect Effect `json:"effect"`
}

// DefaultHand 每次客户端会话开始时发放的固定手牌
func DefaultHand() []Card {
	hand := []Card{
		{ID: 1, Name: BuildingFarm, Effect: Effect{Resources: 10}},
		{ID: 2, Name: BuildingFactory, Effect: Effect{Resources: 30}},
		{ID: 3, Name: BuildingResearchLab, Effect: Effect{Resources: 60}},
		{ID: 4, Name: BuildingShop, Effect: Effect{Resources: 15}},
		{ID: 5, Name: BuildingMarket, Effect: Effect{Resources: 20}},
		{ID: 6, Name: BuildingTownHall, Effect: Effect{Residents: 5}},
		{ID: 7, Name: BuildingHouse, Effect: Effect{Residents: 5}},
	}
	for i := range hand {
		hand[i].Cost = BuildingCost(hand[i].Name)
	}
	return hand
}
