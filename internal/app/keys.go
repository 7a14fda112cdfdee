package app

import "fmt"

const (
	areaInfoKey = "area_info"
	homePageKey = "home_page_data"
)

func detailKey(houseID int64) string {
	return fmt.Sprintf("house_info_%d", houseID)
}

// listKey names the shared record for one filter/sort combination. The
// page number is deliberately not part of the key: each page is a field
// of the record, so all pages of one combination expire together. Absent
// parameters arrive as empty strings, so omission and explicit-empty
// collapse to the same key. The area id is an opaque token here.
func listKey(areaID, startDate, endDate, sortKey string) string {
	return fmt.Sprintf("houses_%s_%s_%s_%s", areaID, startDate, endDate, sortKey)
}
