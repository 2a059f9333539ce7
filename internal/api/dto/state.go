package dto

type NoticeResponse struct {
	Level   string `json:"level"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type ZoneResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Class     string `json:"class"`
	Packages  []int  `json:"packages"`
	Delivered []int  `json:"delivered"`
}

type CountsResponse struct {
	Assigned  int `json:"assigned"`
	Delivered int `json:"delivered"`
	Remaining int `json:"remaining"`
}

type StateResponse struct {
	Phase        string            `json:"phase"`
	PackageRange int               `json:"packageRange"`
	RangePresets []int             `json:"rangePresets"`
	DarkMode     bool              `json:"darkMode"`
	FirstRun     bool              `json:"firstRun"`
	Selection    []int             `json:"selection"`
	Packages     map[string]string `json:"packages"`
	Delivered    []int             `json:"delivered"`
	Zones        []ZoneResponse    `json:"zones"`
	Unassigned   []int             `json:"unassigned"`
	Counts       CountsResponse    `json:"counts"`
	CanUndo      bool              `json:"canUndo"`
	CanDeliver   bool              `json:"canDeliver"`
	Notices      []NoticeResponse  `json:"notices"`
}
