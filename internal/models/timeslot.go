package models

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// DayOfWeek identifies a weekday using its upper-case English name.
type DayOfWeek string

const (
	Monday    DayOfWeek = "MONDAY"
	Tuesday   DayOfWeek = "TUESDAY"
	Wednesday DayOfWeek = "WEDNESDAY"
	Thursday  DayOfWeek = "THURSDAY"
	Friday    DayOfWeek = "FRIDAY"
	Saturday  DayOfWeek = "SATURDAY"
	Sunday    DayOfWeek = "SUNDAY"
)

// AllDays lists the week in calendar order starting on Monday.
var AllDays = []DayOfWeek{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

var dayOrder = map[DayOfWeek]int{
	Monday: 0, Tuesday: 1, Wednesday: 2, Thursday: 3, Friday: 4, Saturday: 5, Sunday: 6,
}

// ParseDay accepts full names or three letter abbreviations in any case.
func ParseDay(raw string) (DayOfWeek, error) {
	value := strings.ToUpper(strings.TrimSpace(raw))
	if value == "" {
		return "", fmt.Errorf("day of week required")
	}
	for _, day := range AllDays {
		if value == string(day) || value == string(day)[:3] {
			return day, nil
		}
	}
	return "", fmt.Errorf("unknown day of week %q", raw)
}

// Index returns the zero based position of the day starting at Monday, or -1.
func (d DayOfWeek) Index() int {
	if idx, ok := dayOrder[d]; ok {
		return idx
	}
	return -1
}

// TimeSlot is a catalog label such as "04:00 PM-05:00 PM".
type TimeSlot string

// SlotDefinition describes one catalog entry.
type SlotDefinition struct {
	Label    TimeSlot `json:"label"`
	Position int      `json:"position"`
	Start    string   `json:"start"`
	End      string   `json:"end"`
}

// TimeSlotCatalog is the fixed, ordered enumeration of bookable slots.
type TimeSlotCatalog struct {
	slots     []SlotDefinition
	positions map[TimeSlot]int
	days      []DayOfWeek
	daySet    map[DayOfWeek]struct{}
}

// CatalogOptions configures catalog generation.
type CatalogOptions struct {
	DayStart      string
	SlotMinutes   int
	SlotCount     int
	OperatingDays []DayOfWeek
}

const slotClockLayout = "03:04 PM"

// NewTimeSlotCatalog generates contiguous slots starting at DayStart (HH:MM, 24h clock).
func NewTimeSlotCatalog(opts CatalogOptions) (*TimeSlotCatalog, error) {
	if opts.DayStart == "" {
		opts.DayStart = "06:00"
	}
	if opts.SlotMinutes <= 0 {
		opts.SlotMinutes = 60
	}
	if opts.SlotCount <= 0 {
		opts.SlotCount = 16
	}
	start, err := time.Parse("15:04", opts.DayStart)
	if err != nil {
		return nil, fmt.Errorf("parse day start %q: %w", opts.DayStart, err)
	}
	length := time.Duration(opts.SlotMinutes) * time.Minute
	if time.Duration(opts.SlotCount)*length > 24*time.Hour {
		return nil, fmt.Errorf("catalog of %d slots x %d minutes exceeds one day", opts.SlotCount, opts.SlotMinutes)
	}

	catalog := &TimeSlotCatalog{
		slots:     make([]SlotDefinition, 0, opts.SlotCount),
		positions: make(map[TimeSlot]int, opts.SlotCount),
	}
	for i := 0; i < opts.SlotCount; i++ {
		from := start.Add(time.Duration(i) * length)
		to := from.Add(length)
		label := TimeSlot(from.Format(slotClockLayout) + "-" + to.Format(slotClockLayout))
		catalog.slots = append(catalog.slots, SlotDefinition{
			Label:    label,
			Position: i,
			Start:    from.Format("15:04"),
			End:      to.Format("15:04"),
		})
		catalog.positions[label] = i
	}

	days := opts.OperatingDays
	if len(days) == 0 {
		days = []DayOfWeek{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}
	}
	catalog.daySet = make(map[DayOfWeek]struct{}, len(days))
	for _, day := range days {
		if day.Index() < 0 {
			return nil, fmt.Errorf("unknown operating day %q", day)
		}
		if _, dup := catalog.daySet[day]; dup {
			continue
		}
		catalog.daySet[day] = struct{}{}
		catalog.days = append(catalog.days, day)
	}
	sort.Slice(catalog.days, func(i, j int) bool { return catalog.days[i].Index() < catalog.days[j].Index() })
	return catalog, nil
}

// Slots returns the catalog entries in order.
func (c *TimeSlotCatalog) Slots() []SlotDefinition {
	out := make([]SlotDefinition, len(c.slots))
	copy(out, c.slots)
	return out
}

// Days returns operating days in week order.
func (c *TimeSlotCatalog) Days() []DayOfWeek {
	out := make([]DayOfWeek, len(c.days))
	copy(out, c.days)
	return out
}

// Position reports the ordinal of a slot label, or -1 when not in the catalog.
func (c *TimeSlotCatalog) Position(slot TimeSlot) int {
	if pos, ok := c.positions[slot]; ok {
		return pos
	}
	return -1
}

// Definition looks up a slot entry.
func (c *TimeSlotCatalog) Definition(slot TimeSlot) (SlotDefinition, bool) {
	pos := c.Position(slot)
	if pos < 0 {
		return SlotDefinition{}, false
	}
	return c.slots[pos], true
}

// ResolveSlot matches a raw label against the catalog ignoring case and spacing.
func (c *TimeSlotCatalog) ResolveSlot(raw string) (TimeSlot, error) {
	normalized := normalizeSlotLabel(raw)
	if normalized == "" {
		return "", fmt.Errorf("time slot required")
	}
	for _, def := range c.slots {
		if normalizeSlotLabel(string(def.Label)) == normalized {
			return def.Label, nil
		}
	}
	return "", fmt.Errorf("unknown time slot %q", raw)
}

// ResolveKey validates both halves of a day/slot pair.
func (c *TimeSlotCatalog) ResolveKey(rawDay, rawSlot string) (SlotKey, error) {
	day, err := ParseDay(rawDay)
	if err != nil {
		return SlotKey{}, err
	}
	if !c.IsOperatingDay(day) {
		return SlotKey{}, fmt.Errorf("%s is not an operating day", day)
	}
	slot, err := c.ResolveSlot(rawSlot)
	if err != nil {
		return SlotKey{}, err
	}
	return SlotKey{Day: day, Slot: slot}, nil
}

// IsOperatingDay reports whether the institution runs classes on day.
func (c *TimeSlotCatalog) IsOperatingDay(day DayOfWeek) bool {
	_, ok := c.daySet[day]
	return ok
}

// Less orders keys by day then catalog position.
func (c *TimeSlotCatalog) Less(a, b SlotKey) bool {
	if a.Day != b.Day {
		return a.Day.Index() < b.Day.Index()
	}
	return c.Position(a.Slot) < c.Position(b.Slot)
}

// SortKeys sorts keys in place by day then slot.
func (c *TimeSlotCatalog) SortKeys(keys []SlotKey) {
	sort.SliceStable(keys, func(i, j int) bool { return c.Less(keys[i], keys[j]) })
}

func normalizeSlotLabel(raw string) string {
	replacer := strings.NewReplacer(" ", "", "–", "-", "—", "-")
	return strings.ToUpper(replacer.Replace(strings.TrimSpace(raw)))
}

// SlotKey addresses a single weekly cell.
type SlotKey struct {
	Day  DayOfWeek `json:"day" db:"day_of_week"`
	Slot TimeSlot  `json:"slot" db:"time_slot"`
}

// String renders "MONDAY 04:00 PM-05:00 PM".
func (k SlotKey) String() string {
	return string(k.Day) + " " + string(k.Slot)
}

// SlotSet is a set of weekly cells.
type SlotSet map[SlotKey]struct{}

// NewSlotSet builds a set from keys.
func NewSlotSet(keys ...SlotKey) SlotSet {
	set := make(SlotSet, len(keys))
	for _, key := range keys {
		set[key] = struct{}{}
	}
	return set
}

// Contains reports membership.
func (s SlotSet) Contains(key SlotKey) bool {
	_, ok := s[key]
	return ok
}

// Add inserts key.
func (s SlotSet) Add(key SlotKey) {
	s[key] = struct{}{}
}

// Remove deletes key; absent keys are ignored.
func (s SlotSet) Remove(key SlotKey) {
	delete(s, key)
}

// SubsetOf reports whether every member of s is in other.
func (s SlotSet) SubsetOf(other SlotSet) bool {
	for key := range s {
		if !other.Contains(key) {
			return false
		}
	}
	return true
}

// Difference returns members of s missing from other.
func (s SlotSet) Difference(other SlotSet) SlotSet {
	out := make(SlotSet)
	for key := range s {
		if !other.Contains(key) {
			out.Add(key)
		}
	}
	return out
}

// Sorted lists members ordered by the catalog.
func (s SlotSet) Sorted(catalog *TimeSlotCatalog) []SlotKey {
	keys := make([]SlotKey, 0, len(s))
	for key := range s {
		keys = append(keys, key)
	}
	catalog.SortKeys(keys)
	return keys
}

// FormatSlotKeys joins keys as "MONDAY 04:00 PM-05:00 PM, ...".
func FormatSlotKeys(keys []SlotKey) string {
	parts := make([]string, len(keys))
	for i, key := range keys {
		parts[i] = key.String()
	}
	return strings.Join(parts, ", ")
}
