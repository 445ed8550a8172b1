// Package model содержит доменные сущности сервиса скидочных акций.
package model

// Platform описывает игровую платформу, на которой проводится акция.
type Platform string

const (
	PlatformSteam       Platform = "Steam"
	PlatformEpicGames   Platform = "Epic Games"
	PlatformGOG         Platform = "GOG"
	PlatformPlayStation Platform = "PlayStation"
	PlatformXbox        Platform = "Xbox"
	PlatformNintendo    Platform = "Nintendo"
	PlatformBattleNet   Platform = "Battle.net"
)

// Platforms перечисляет все поддерживаемые платформы.
var Platforms = []Platform{
	PlatformSteam,
	PlatformEpicGames,
	PlatformGOG,
	PlatformPlayStation,
	PlatformXbox,
	PlatformNintendo,
	PlatformBattleNet,
}

// Region описывает регион действия акции.
type Region string

const (
	RegionGlobal       Region = "Global"
	RegionNorthAmerica Region = "North America"
	RegionEurope       Region = "Europe"
	RegionAsia         Region = "Asia"
	RegionSouthAmerica Region = "South America"
	RegionOceania      Region = "Oceania"
)

// Regions перечисляет все регионы.
var Regions = []Region{
	RegionGlobal,
	RegionNorthAmerica,
	RegionEurope,
	RegionAsia,
	RegionSouthAmerica,
	RegionOceania,
}

// PlatformRegions задаёт каноническую таблицу допустимых регионов для каждой
// платформы. Таблица применяется и при генерации записей, и при валидации правок.
var PlatformRegions = map[Platform][]Region{
	PlatformSteam:       {RegionGlobal},
	PlatformEpicGames:   {RegionGlobal},
	PlatformGOG:         {RegionGlobal},
	PlatformBattleNet:   {RegionNorthAmerica, RegionEurope, RegionAsia},
	PlatformNintendo:    {RegionNorthAmerica, RegionEurope, RegionAsia, RegionOceania},
	PlatformPlayStation: Regions,
	PlatformXbox:        Regions,
}

// IsRegionAllowed сообщает, допустим ли регион для указанной платформы.
func IsRegionAllowed(p Platform, r Region) bool {
	for _, allowed := range PlatformRegions[p] {
		if allowed == r {
			return true
		}
	}
	return false
}

// ImplementationStatus описывает статус внедрения акции.
type ImplementationStatus string

const (
	ImplementationPlanned    ImplementationStatus = "Planned"
	ImplementationInProgress ImplementationStatus = "In Progress"
	ImplementationDone       ImplementationStatus = "Implemented"
	ImplementationFailed     ImplementationStatus = "Failed"
	ImplementationOnHold     ImplementationStatus = "On Hold"
)

// ImplementationStatuses перечисляет все статусы внедрения.
var ImplementationStatuses = []ImplementationStatus{
	ImplementationPlanned,
	ImplementationInProgress,
	ImplementationDone,
	ImplementationFailed,
	ImplementationOnHold,
}

// SalesEventStatus описывает статус распродажи.
type SalesEventStatus string

const (
	SalesEventScheduled SalesEventStatus = "Scheduled"
	SalesEventActive    SalesEventStatus = "Active"
	SalesEventCompleted SalesEventStatus = "Completed"
	SalesEventCancelled SalesEventStatus = "Cancelled"
)

// SalesEventStatuses перечисляет все статусы распродажи.
var SalesEventStatuses = []SalesEventStatus{
	SalesEventScheduled,
	SalesEventActive,
	SalesEventCompleted,
	SalesEventCancelled,
}

// DiscountRecord описывает одну скидочную акцию клиента.
// Поля Month и Length вычисляются из StartDate и EndDate и никогда
// не являются самостоятельным источником данных.
type DiscountRecord struct {
	ClientID             string               `json:"clientId"`
	Client               string               `json:"client" validate:"required"`
	Platform             Platform             `json:"platform" validate:"required"`
	Region               Region               `json:"region"`
	Discount             string               `json:"discount"`
	Percent              int                  `json:"percent" validate:"gte=0,lte=100"`
	Comments             string               `json:"comments"`
	StartDate            string               `json:"startDate" validate:"omitempty,griddate"`
	StartTime            string               `json:"startTime"`
	EndDate              string               `json:"endDate" validate:"omitempty,griddate"`
	EndTime              string               `json:"endTime"`
	Deadline             string               `json:"deadline" validate:"omitempty,griddate"`
	ImplementationStatus ImplementationStatus `json:"implementationStatus"`
	SalesEventStatus     SalesEventStatus     `json:"salesEventStatus"`
	Month                string               `json:"month"`
	Length               int                  `json:"length"`
}
