// Package csi holds the CSI MasterFormat numbering rules shared by every
// classification tier: the division whitelist, section-number normalization,
// and the heuristic that separates real section numbers from dates.
package csi

import (
	"fmt"
	"strconv"
	"strings"
)

// Divisions is the set of valid CSI MasterFormat division codes.
var Divisions = map[string]bool{
	"00": true, "01": true, "02": true, "03": true, "04": true,
	"05": true, "06": true, "07": true, "08": true, "09": true,
	"10": true, "11": true, "12": true, "13": true, "14": true,
	"21": true, "22": true, "23": true, "25": true, "26": true,
	"27": true, "28": true, "31": true, "32": true, "33": true,
	"34": true, "35": true, "40": true, "41": true, "42": true,
	"43": true, "44": true, "45": true, "46": true, "47": true,
	"48": true,
}

// DivisionNames maps division codes to their MasterFormat titles, for reports.
var DivisionNames = map[string]string{
	"00": "Procurement and Contracting Requirements",
	"01": "General Requirements",
	"02": "Existing Conditions",
	"03": "Concrete",
	"04": "Masonry",
	"05": "Metals",
	"06": "Wood, Plastics, and Composites",
	"07": "Thermal and Moisture Protection",
	"08": "Openings",
	"09": "Finishes",
	"10": "Specialties",
	"11": "Equipment",
	"12": "Furnishings",
	"13": "Special Construction",
	"14": "Conveying Equipment",
	"21": "Fire Suppression",
	"22": "Plumbing",
	"23": "Heating, Ventilating, and Air Conditioning",
	"25": "Integrated Automation",
	"26": "Electrical",
	"27": "Communications",
	"28": "Electronic Safety and Security",
	"31": "Earthwork",
	"32": "Exterior Improvements",
	"33": "Utilities",
	"34": "Transportation",
	"35": "Waterway and Marine Construction",
	"40": "Process Interconnections",
	"41": "Material Processing and Handling Equipment",
	"42": "Process Heating, Cooling, and Drying Equipment",
	"43": "Process Gas and Liquid Handling Equipment",
	"44": "Pollution and Waste Control Equipment",
	"45": "Industry-Specific Manufacturing Equipment",
	"46": "Water and Wastewater Equipment",
	"47": "Electrical Power Generation Support",
	"48": "Electrical Power Generation",
}

// commonSectionMids are middle groups that occur in real section numbers.
// A triple whose middle falls in the date range but matches one of these is
// still treated as a section. Empirically tuned; kept verbatim from the
// production heuristic pending recalibration against a labeled corpus.
var commonSectionMids = map[int]bool{
	0: true, 5: true, 10: true, 15: true, 20: true, 21: true, 22: true,
	23: true, 24: true, 25: true, 30: true, 35: true, 40: true, 50: true,
	60: true, 70: true, 80: true, 90: true,
}

// ValidDivision reports whether code is a real CSI division.
func ValidDivision(code string) bool {
	return Divisions[code]
}

// Administrative reports whether a division is a procurement/general-requirements
// division rather than a trade division.
func Administrative(code string) bool {
	return code == "00" || code == "01"
}

// ValidSection validates a dd dd dd triple as a real section number. It rejects
// unknown divisions, and rejects triples that look like dates: a middle group
// of 1-31 with a last group of 20-35 reads as MM DD YY (e.g. "04 17 25" is
// April 17 2025, not Masonry) unless the middle group is a common section
// middle.
func ValidSection(d1, d2, d3 string) bool {
	if !Divisions[d1] {
		return false
	}
	mid, err := strconv.Atoi(d2)
	if err != nil {
		return false
	}
	last, err := strconv.Atoi(d3)
	if err != nil {
		return false
	}
	if mid >= 1 && mid <= 31 && last >= 20 && last <= 35 {
		if !commonSectionMids[mid] && mid <= 28 {
			return false
		}
	}
	return true
}

// FormatSection assembles a canonical spaced section number, with an optional
// decimal subsection such as "04 21 13.13".
func FormatSection(d1, d2, d3, sub string) string {
	s := fmt.Sprintf("%s %s %s", d1, d2, d3)
	if sub != "" {
		s += "." + sub
	}
	return s
}

// NormalizeCompact expands a compact section code ("04220" or "042200") into
// the canonical spaced form. Five-digit codes right-pad the last group.
func NormalizeCompact(div, rest string) string {
	switch len(rest) {
	case 3:
		return fmt.Sprintf("%s %s %s0", div, rest[:2], rest[2:])
	case 4:
		return fmt.Sprintf("%s %s %s", div, rest[:2], rest[2:])
	default:
		if len(rest) < 4 {
			return fmt.Sprintf("%s %s 00", div, rest)
		}
		return fmt.Sprintf("%s %s %s", div, rest[:2], rest[2:4])
	}
}

// DivisionOf returns the 2-digit division prefix of a section number.
func DivisionOf(section string) string {
	if len(section) < 2 {
		return ""
	}
	return section[:2]
}

// ParseDivision normalizes a loosely formatted division code ("4", "04 ")
// to its 2-digit form, or returns "" if it is not a valid division.
func ParseDivision(code string) string {
	code = strings.TrimSpace(code)
	if len(code) == 1 {
		code = "0" + code
	}
	if len(code) != 2 || !Divisions[code] {
		return ""
	}
	return code
}
