// Package fixture holds the sample rows used by tests and the example.
package fixture

import "time"

type Name struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type President struct {
	Name     Name      `json:"name"`
	Nickname string    `json:"nickname"`
	Term     string    `json:"term"`
	Born     time.Time `json:"born" limit:"born,matcher=date,pattern=MM/dd/yyyy"`
	Party    string    `json:"party"`
	Terms    int       `json:"terms" limit:"terms,matcher=number,pattern=#,##0"`
}

func day(s string) time.Time {
	t, err := time.Parse("01/02/2006", s)
	if err != nil {
		panic(err)
	}
	return t
}

// Presidents returns a fresh copy of the sample rows, in term order.
func Presidents() []President {
	return []President{
		{Name{"George", "Washington"}, "Father of His Country", "1789-1797", day("02/22/1732"), "Federalist", 2},
		{Name{"John", "Adams"}, "Atlas of Independence", "1797-1801", day("10/30/1735"), "Federalist", 1},
		{Name{"Thomas", "Jefferson"}, "Man of the People", "1801-1809", day("04/13/1743"), "Democratic-Republican", 2},
		{Name{"James", "Madison"}, "Father of the Constitution", "1809-1817", day("03/16/1751"), "Democratic-Republican", 2},
		{Name{"James", "Monroe"}, "Last Cocked Hat", "1817-1825", day("04/28/1758"), "Democratic-Republican", 2},
		{Name{"John Quincy", "Adams"}, "Old Man Eloquent", "1825-1829", day("07/11/1767"), "Democratic-Republican", 1},
		{Name{"Andrew", "Jackson"}, "Old Hickory", "1829-1837", day("03/15/1767"), "Democratic", 2},
		{Name{"Martin", "Van Buren"}, "Little Magician", "1837-1841", day("12/05/1782"), "Democratic", 1},
		{Name{"William Henry", "Harrison"}, "Tippecanoe", "1841-1841", day("02/09/1773"), "Whig", 1},
		{Name{"John", "Tyler"}, "His Accidency", "1841-1845", day("03/29/1790"), "Whig", 1},
		{Name{"James K.", "Polk"}, "Young Hickory", "1845-1849", day("11/02/1795"), "Democratic", 1},
		{Name{"Zachary", "Taylor"}, "Old Rough and Ready", "1849-1850", day("11/24/1784"), "Whig", 1},
		{Name{"Millard", "Fillmore"}, "The American Louis Philippe", "1850-1853", day("01/07/1800"), "Whig", 1},
		{Name{"Franklin", "Pierce"}, "Handsome Frank", "1853-1857", day("11/23/1804"), "Democratic", 1},
		{Name{"James", "Buchanan"}, "Old Buck", "1857-1861", day("04/23/1791"), "Democratic", 1},
		{Name{"Abraham", "Lincoln"}, "Honest Abe", "1861-1865", day("02/12/1809"), "Republican", 2},
		{Name{"Andrew", "Johnson"}, "The Tennessee Tailor", "1865-1869", day("12/29/1808"), "National Union", 1},
	}
}

// PresidentMaps returns the rows as loosely typed maps, the shape rows
// read from JSON or YAML have.
func PresidentMaps() []map[string]any {
	ps := Presidents()
	out := make([]map[string]any, len(ps))
	for i, p := range ps {
		out[i] = map[string]any{
			"name":     map[string]any{"firstName": p.Name.FirstName, "lastName": p.Name.LastName},
			"nickname": p.Nickname,
			"term":     p.Term,
			"born":     p.Born,
			"party":    p.Party,
			"terms":    p.Terms,
		}
	}
	return out
}
