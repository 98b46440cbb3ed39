package seeding

import "github.com/vladislavdragonenkov/orderdesk/internal/domain"

// DefaultBatch возвращает канонический стартовый набор справочных данных:
// каталог из 11 товаров и ростер из 7 покупателей.
func DefaultBatch() Batch {
	return Batch{
		Products: []domain.Product{
			{UPC: "076174517163", Description: "16 oz. hickory hammer", Manufacturer: "Stanely Tools", ManufacturerCode: "1", PriceMinor: 997, QtyOnHand: 50},
			{UPC: "042187012933", Description: "Mozzarella String Cheese", Manufacturer: "American Heritage", ManufacturerCode: "56", PriceMinor: 1599, QtyOnHand: 500},
			{UPC: "042187021355", Description: "Mild Cheddar Chunk", Manufacturer: "Best Yet", ManufacturerCode: "12", PriceMinor: 1299, QtyOnHand: 400},
			{UPC: "016000435094", Description: "Cheerios 12oz", Manufacturer: "General Mills", ManufacturerCode: "18", PriceMinor: 660, QtyOnHand: 150},
			{UPC: "018894110675", Description: "Toasted Oats", Manufacturer: "Big Y", ManufacturerCode: "39", PriceMinor: 799, QtyOnHand: 90},
			{UPC: "045674530217", Description: "Large Brown Eggs", Manufacturer: "Star Market", ManufacturerCode: "30", PriceMinor: 599, QtyOnHand: 800},
			{UPC: "688267049361", Description: "Organic Extra Firm Tofu 14oz", Manufacturer: "Natures Promise", ManufacturerCode: "479", PriceMinor: 350, QtyOnHand: 100},
			{UPC: "078742121703", Description: "Crunchy Nugget", Manufacturer: "Great Value", ManufacturerCode: "53", PriceMinor: 1369, QtyOnHand: 500},
			{UPC: "042400070993", Description: "Strawberry Cream Mini Spooners 18oz", Manufacturer: "Malt-O-Meal", ManufacturerCode: "95", PriceMinor: 450, QtyOnHand: 100},
			{UPC: "036800661134", Description: "Green Split Peas", Manufacturer: "Food Club", ManufacturerCode: "80", PriceMinor: 200, QtyOnHand: 150},
			{UPC: "015400454780", Description: "Crunchy Peanut Butter", Manufacturer: "Carriage House", ManufacturerCode: "269", PriceMinor: 650, QtyOnHand: 250},
		},
		Customers: []domain.Customer{
			{LastName: "Mcarthur", FirstName: "Khaleesi", Street: "Prospect Street", Zip: "90284", Phone: "484-645-8901"},
			{LastName: "Wooten", FirstName: "Rivka", Street: "Brown Avenue", Zip: "92840", Phone: "404-464-9377"},
			{LastName: "Riddle", FirstName: "Samera", Street: "Lumber Passage", Zip: "62589", Phone: "361-993-5588"},
			{LastName: "Draper", FirstName: "Aysha", Street: "Parkview Lane", Zip: "81462", Phone: "707-872-4957"},
			{LastName: "Mcmillan", FirstName: "Inaaya", Street: "Parkview Lane", Zip: "81462", Phone: "714-907-8655"},
			{LastName: "Truong", FirstName: "Lewie", Street: "Marble Passage", Zip: "49561", Phone: "701-527-7993"},
			{LastName: "Suarez", FirstName: "Cody", Street: "Lawn Route", Zip: "64521", Phone: "812-913-6880"},
		},
	}
}
