package model

import (
	"encoding/json"
	"strings"
)

// Object is a Dublin Core metadata record from the source feed.
// Fields that some exporters emit as a single string and others as an
// array use FlexStrings so either shape decodes.
type Object struct {
	ObjectID    string      `json:"objectid"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Subject     FlexStrings `json:"subject,omitempty"`
	Creator     FlexStrings `json:"creator,omitempty"`
	Relation    FlexStrings `json:"relation,omitempty"`
	IsPartOf    FlexStrings `json:"isPartOf,omitempty"`
	Coverage    string      `json:"coverage,omitempty"`
	Date        string      `json:"date,omitempty"`
	Language    string      `json:"language,omitempty"`
	Thumbnail   string      `json:"object_thumb,omitempty"`
}

// ID returns the object identifier, or "unknown" when the feed omits it.
func (o Object) ID() string {
	if o.ObjectID == "" {
		return "unknown"
	}
	return o.ObjectID
}

// FlexStrings decodes a JSON value that may be a string, an array of
// strings, or absent. Unrecognized shapes decode to an empty list rather
// than failing the whole record.
type FlexStrings []string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexStrings) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*f = list
		return nil
	}

	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if single == "" {
			*f = nil
		} else {
			*f = []string{single}
		}
		return nil
	}

	*f = nil
	return nil
}

// Join returns the values joined with ", " for prompt interpolation.
func (f FlexStrings) Join() string {
	return strings.Join(f, ", ")
}

// Feed is the top-level document of the metadata source.
type Feed struct {
	Objects []Object `json:"objects"`
}
