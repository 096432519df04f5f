package dashboard

// DefaultConfiguration is the layout a user gets when neither the preference
// service nor the local cache has anything stored: every stat card hidden,
// every widget shown.
func DefaultConfiguration() Configuration {
	return Configuration{
		Layout: Layout{
			StatCards: []Entry{
				{ID: "companies", Title: "Companies", Visible: false, Order: 1},
				{ID: "locations", Title: "Locations", Visible: false, Order: 2},
				{ID: "slot-machines", Title: "Slot machines", Visible: false, Order: 3},
				{ID: "jackpots", Title: "Jackpots", Visible: false, Order: 4},
				{ID: "metrology", Title: "Metrology", Visible: false, Order: 5},
				{ID: "authorizations", Title: "Authorizations", Visible: false, Order: 6},
				{ID: "invoices", Title: "Invoices", Visible: false, Order: 7},
				{ID: "users", Title: "Users", Visible: false, Order: 8},
			},
			Widgets: []Entry{
				{ID: "onjn-calendar", Title: "ONJN calendar", Visible: true, Order: 1},
				{ID: "currency-rates", Title: "Currency rates", Visible: true, Order: 2},
				{ID: "recent-activity", Title: "Recent activity", Visible: true, Order: 3},
				{ID: "quick-actions", Title: "Quick actions", Visible: true, Order: 4},
				{ID: "expiring-authorizations", Title: "Expiring authorizations", Visible: true, Order: 5},
				{ID: "notes", Title: "Notes", Visible: true, Order: 6},
			},
		},
		Sizes: defaultSizes(),
	}
}

func defaultSizes() SizeMap {
	m := SizeMap{}
	for _, id := range []string{
		"companies", "locations", "slot-machines", "jackpots",
		"metrology", "authorizations", "invoices", "users",
		"expiring-authorizations", "notes",
	} {
		m[id] = SizeMedium
	}
	m["onjn-calendar"] = SizeLarge
	m["recent-activity"] = SizeExtraLarge
	m["currency-rates"] = SizeSmall
	m["quick-actions"] = SizeSmall
	return m
}
