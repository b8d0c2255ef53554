package domain

import "time"

type Device string

// MaxBucketKeys caps the distinct pages and referrers kept per day. Further
// keys are counted under OtherBucketKey.
const (
	MaxBucketKeys  = 500
	OtherBucketKey = "other"
)

const (
	DeviceDesktop Device = "desktop"
	DeviceMobile  Device = "mobile"
	DeviceTablet  Device = "tablet"
)

// Visit is one classified page view ready to be counted.
type Visit struct {
	At         time.Time
	Path       string
	Referrer   string
	Device     Device
	NewVisitor bool
}

// DailyVisits is the counter bucket for one UTC day.
type DailyVisits struct {
	Day            Date             `json:"day"`
	Visits         int64            `json:"visits"`
	UniqueVisitors int64            `json:"unique_visitors"`
	Pages          map[string]int64 `json:"pages"`
	Devices        map[string]int64 `json:"devices"`
	Referrers      map[string]int64 `json:"referrers"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

func NewDailyVisits(day Date) DailyVisits {
	return DailyVisits{
		Day:       day,
		Pages:     map[string]int64{},
		Devices:   map[string]int64{},
		Referrers: map[string]int64{},
	}
}

// Apply adds one visit to the bucket.
func (d *DailyVisits) Apply(v Visit) {
	if d.Pages == nil {
		d.Pages = map[string]int64{}
	}
	if d.Devices == nil {
		d.Devices = map[string]int64{}
	}
	if d.Referrers == nil {
		d.Referrers = map[string]int64{}
	}
	d.Visits++
	if v.NewVisitor {
		d.UniqueVisitors++
	}
	countKey(d.Pages, v.Path)
	d.Devices[string(v.Device)]++
	countKey(d.Referrers, v.Referrer)
}

func countKey(counts map[string]int64, key string) {
	if _, ok := counts[key]; !ok {
		n := len(counts)
		if _, ok := counts[OtherBucketKey]; ok {
			n--
		}
		if n >= MaxBucketKeys {
			key = OtherBucketKey
		}
	}
	counts[key]++
}
