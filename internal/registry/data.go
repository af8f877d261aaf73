package registry

// Source mappings as published by the DA Bantay Presyo site. The query
// parameter doubles as the region id; paths follow the tbl_<category>.php
// scheme. Both can be overridden from configuration when the site renames
// them.

var defaultRegions = []Region{
	{ID: 1, Name: "CAR (Cordillera Administrative Region)", Param: "1"},
	{ID: 2, Name: "Region I (Ilocos Region)", Param: "2"},
	{ID: 3, Name: "Region II (Cagayan Valley)", Param: "3"},
	{ID: 4, Name: "Region III (Central Luzon)", Param: "4"},
	{ID: 5, Name: "Region IV-A (CALABARZON)", Param: "5"},
	{ID: 6, Name: "Region IV-B (MIMAROPA)", Param: "6"},
	{ID: 7, Name: "Region V (Bicol Region)", Param: "7"},
	{ID: 8, Name: "Region VI (Western Visayas)", Param: "8"},
	{ID: 9, Name: "Region VII (Central Visayas)", Param: "9"},
	{ID: 10, Name: "Region VIII (Eastern Visayas)", Param: "10"},
	{ID: 11, Name: "Region IX (Zamboanga Peninsula)", Param: "11"},
	{ID: 12, Name: "Region X (Northern Mindanao)", Param: "12"},
	{ID: 13, Name: "Region XI (Davao Region)", Param: "13"},
	{ID: 14, Name: "Region XII (SOCCSKSARGEN)", Param: "14"},
	{ID: 15, Name: "Region XIII (Caraga)", Param: "15"},
	{ID: 16, Name: "NCR (National Capital Region)", Param: "16"},
	{ID: 17, Name: "BARMM (Bangsamoro Autonomous Region)", Param: "17"},
}

var defaultCategories = []Category{
	{Slug: "rice", Label: "Rice", Path: "/tbl_rice.php"},
	{Slug: "meat", Label: "Meat", Path: "/tbl_meat.php"},
	{Slug: "fish", Label: "Fish", Path: "/tbl_fish.php"},
	{Slug: "vegetables", Label: "Vegetables", Path: "/tbl_veg.php"},
	{Slug: "fruits", Label: "Fruits", Path: "/tbl_fruit.php"},
}

var defaultCommodities = []Commodity{
	{Name: "Regular Milled Rice", Category: "rice", Unit: "kg"},
	{Name: "Well Milled Rice", Category: "rice", Unit: "kg"},
	{Name: "Premium Rice", Category: "rice", Unit: "kg"},
	{Name: "Special Rice", Category: "rice", Unit: "kg"},
	{Name: "Pork Kasim", Category: "meat", Unit: "kg"},
	{Name: "Pork Liempo", Category: "meat", Unit: "kg"},
	{Name: "Whole Chicken", Category: "meat", Unit: "kg"},
	{Name: "Chicken Egg", Category: "meat", Unit: "pc"},
	{Name: "Beef Rump", Category: "meat", Unit: "kg"},
	{Name: "Beef Brisket", Category: "meat", Unit: "kg"},
	{Name: "Bangus", Category: "fish", Unit: "kg"},
	{Name: "Tilapia", Category: "fish", Unit: "kg"},
	{Name: "Galunggong", Category: "fish", Unit: "kg"},
	{Name: "Alumahan", Category: "fish", Unit: "kg"},
	{Name: "Ampalaya", Category: "vegetables", Unit: "kg"},
	{Name: "Pechay", Category: "vegetables", Unit: "kg"},
	{Name: "Squash", Category: "vegetables", Unit: "kg"},
	{Name: "Eggplant", Category: "vegetables", Unit: "kg"},
	{Name: "Tomato", Category: "vegetables", Unit: "kg"},
	{Name: "Red Onion", Category: "vegetables", Unit: "kg"},
	{Name: "Garlic", Category: "vegetables", Unit: "kg"},
	{Name: "Calamansi", Category: "fruits", Unit: "kg"},
	{Name: "Banana Lakatan", Category: "fruits", Unit: "kg"},
	{Name: "Papaya", Category: "fruits", Unit: "kg"},
}
