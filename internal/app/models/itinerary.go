package models

import (
	"bytes"
	"encoding/json"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// ActivityType is the allowed set of Activity.Type values.
type ActivityType string

const (
	ActivitySightseeing ActivityType = "sightseeing"
	ActivityFood        ActivityType = "food"
	ActivityActivity    ActivityType = "activity"
	ActivityTransport   ActivityType = "transport"
	ActivityRest        ActivityType = "rest"
)

// ActivityTypes lists the enumeration in the order the prompt advertises it.
var ActivityTypes = []ActivityType{
	ActivitySightseeing,
	ActivityFood,
	ActivityActivity,
	ActivityTransport,
	ActivityRest,
}

var stringType = reflect.TypeOf("")

// FlexString decodes a JSON string, number or boolean into a string. Models
// regularly answer "cost": 25 where the schema asks for "€€".
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case float64:
		*f = FlexString(strconv.FormatFloat(t, 'f', -1, 64))
	case bool:
		*f = FlexString(strconv.FormatBool(t))
	default:
		return &json.UnmarshalTypeError{Value: string(data), Type: stringType}
	}
	return nil
}

// FlexStrings decodes either a JSON array of scalars or a single scalar. A
// lone "Bring water" becomes a one-element list; an empty string becomes nil.
type FlexStrings []string

func (f *FlexStrings) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var items []FlexString
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		out := make(FlexStrings, 0, len(items))
		for _, item := range items {
			out = append(out, string(item))
		}
		*f = out
		return nil
	}

	var one FlexString
	if err := json.Unmarshal(data, &one); err != nil {
		return err
	}
	*f = nil
	if one != "" {
		*f = FlexStrings{string(one)}
	}
	return nil
}

// flexInt reads a day number written as 2, 2.0 or "2". Anything else is 0.
func flexInt(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}
	var s FlexString
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(string(s)), 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}
	return int(n)
}

// Itinerary is the structured result of generation.
type Itinerary struct {
	Summary         Summary                `json:"summary"`
	Days            []DayPlan              `json:"days"`
	Tips            map[string]FlexStrings `json:"tips"`
	Recommendations Recommendations        `json:"recommendations"`
	Metadata        Metadata               `json:"metadata"`
}

type Summary struct {
	Title         string      `json:"title"`
	Description   string      `json:"description"`
	Highlights    FlexStrings `json:"highlights"`
	BestTime      FlexString  `json:"bestTime"`
	EstimatedCost FlexString  `json:"estimatedCost"`
}

type DayPlan struct {
	Day        int        `json:"day"`
	Title      string     `json:"title"`
	Theme      string     `json:"theme"`
	Activities []Activity `json:"activities"`
}

// UnmarshalJSON tolerates a day number sent as a string. The service renumbers
// days anyway, so an unreadable value decodes as 0 instead of failing.
func (d *DayPlan) UnmarshalJSON(data []byte) error {
	type plain DayPlan
	aux := struct {
		*plain
		Day json.RawMessage `json:"day"`
	}{plain: (*plain)(d)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	d.Day = flexInt(aux.Day)
	return nil
}

type Activity struct {
	Time        FlexString   `json:"time"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Duration    FlexString   `json:"duration"`
	Type        ActivityType `json:"type"`
	Cost        FlexString   `json:"cost"`
	Tips        FlexStrings  `json:"tips"`
	Location    string       `json:"location"`
}

type Recommendations struct {
	Restaurants      []Restaurant      `json:"restaurants"`
	Accommodations   []Accommodation   `json:"accommodations"`
	LocalExperiences []LocalExperience `json:"localExperiences"`
}

type Restaurant struct {
	Name       string     `json:"name"`
	Cuisine    string     `json:"cuisine"`
	PriceRange FlexString `json:"priceRange"`
	MustTry    string     `json:"mustTry"`
}

type Accommodation struct {
	Name       string     `json:"name"`
	Type       string     `json:"type"`
	Area       string     `json:"area"`
	PriceRange FlexString `json:"priceRange"`
}

type LocalExperience struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Duration    FlexString `json:"duration"`
}

// Metadata describes how an itinerary came to be.
type Metadata struct {
	RequestID      string             `json:"requestId,omitempty"`
	GeneratedAt    time.Time          `json:"generatedAt"`
	IsFallback     bool               `json:"isFallback"`
	FallbackReason string             `json:"fallbackReason,omitempty"`
	DaysAdjusted   bool               `json:"daysAdjusted,omitempty"`
	Model          string             `json:"model,omitempty"`
	Destination    string             `json:"destination,omitempty"`
	Configuration  *TripConfiguration `json:"configuration,omitempty"`
}
