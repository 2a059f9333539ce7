package dto

// IntentRequest carries the arguments of any intent. Each endpoint reads the fields it needs.
type IntentRequest struct {
	Number    *int   `json:"number"`
	Numbers   []int  `json:"numbers"`
	Zone      string `json:"zone"`
	Delivered *bool  `json:"delivered"`
	Range     *int   `json:"packageRange"`
	DarkMode  *bool  `json:"darkMode"`
	Phase     string `json:"phase"`
}
