package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type Dealership struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Address string  `json:"address"`
	Phone   string  `json:"phone"`
	Rating  float64 `json:"rating"`
	Hours   string  `json:"hours"`
	Website string  `json:"website"`
}

var dallasDealerships = []Dealership{
	{
		ID:      "1",
		Name:    "Toyota of Dallas",
		Address: "2610 Forest Ln, Dallas, TX",
		Phone:   "(214) 555-1001",
		Rating:  4.6,
		Hours:   "Open until 8:00 PM",
		Website: "https://www.toyotaofdallas.com/",
	},
	{
		ID:      "2",
		Name:    "Toyota North Dallas",
		Address: "12345 Belt Line Rd, Dallas, TX",
		Phone:   "(214) 555-1002",
		Rating:  4.5,
		Hours:   "Open until 8:00 PM",
		Website: "https://www.toyotanorthdallas.com/",
	},
	{
		ID:      "3",
		Name:    "Cowboy Toyota",
		Address: "9525 E R L Thornton Fwy, Dallas, TX",
		Phone:   "(214) 555-1003",
		Rating:  4.4,
		Hours:   "Open until 8:00 PM",
		Website: "https://www.cowboytoyota.com/",
	},
}

// Dealerships возвращает каталог дилеров в районе Далласа.
func Dealerships(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string][]Dealership{"dealerships": dallasDealerships})
}
