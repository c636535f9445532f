package codec

import "encoding/xml"

// Date layouts used on the wire.
const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02T15:04:05Z"
)

type wireIdentifier struct {
	Local string `xml:"localIdentifier,attr,omitempty"`
	Value string `xml:",chardata"`
}

type wireCategories struct {
	MaxItems string   `xml:"maxItems,attr,omitempty"`
	Items    []string `xml:"Category"`
}

type wireField struct {
	Key   string `xml:"Key"`
	Value string `xml:"Value"`
}

type wireCustomFields struct {
	MaxItems string      `xml:"maxItems,attr,omitempty"`
	Fields   []wireField `xml:"Field"`
}

type wireNumber struct {
	Type  string `xml:"type,attr,omitempty"`
	Value string `xml:",chardata"`
}

type wirePhoneNumbers struct {
	MaxItems string       `xml:"maxItems,attr,omitempty"`
	Numbers  []wireNumber `xml:"Number"`
}

type wireEmails struct {
	MaxItems string   `xml:"maxItems,attr,omitempty"`
	Emails   []string `xml:"Email"`
}

type wireAddress struct {
	Street  string `xml:"Street,omitempty"`
	City    string `xml:"City,omitempty"`
	State   string `xml:"State,omitempty"`
	Zip     string `xml:"Zip,omitempty"`
	Country string `xml:"Country,omitempty"`
}

// wireCommon holds the elements every record kind carries.
type wireCommon struct {
	Identifier   *wireIdentifier   `xml:"Identifier"`
	Categories   *wireCategories   `xml:"Categories"`
	CustomFields *wireCustomFields `xml:"CustomFields"`
}

type wireContact struct {
	XMLName xml.Name `xml:"Contact"`
	wireCommon

	NameTitle  string `xml:"NameTitle,omitempty"`
	FirstName  string `xml:"FirstName,omitempty"`
	MiddleName string `xml:"MiddleName,omitempty"`
	LastName   string `xml:"LastName,omitempty"`
	Suffix     string `xml:"Suffix,omitempty"`
	Nickname   string `xml:"Nickname,omitempty"`
	Company    string `xml:"Company,omitempty"`
	Department string `xml:"Department,omitempty"`
	JobTitle   string `xml:"JobTitle,omitempty"`

	PhoneNumbers *wirePhoneNumbers `xml:"PhoneNumbers"`
	Emails       *wireEmails       `xml:"Emails"`

	HomeAddress     *wireAddress `xml:"HomeAddress"`
	BusinessAddress *wireAddress `xml:"BusinessAddress"`

	Birthday    string `xml:"Birthday,omitempty"`
	Anniversary string `xml:"Anniversary,omitempty"`
	Gender      string `xml:"Gender,omitempty"`
	Notes       string `xml:"Notes,omitempty"`
}

type wireTask struct {
	XMLName xml.Name `xml:"Task"`
	wireCommon

	Description      string `xml:"Description,omitempty"`
	Priority         string `xml:"Priority,omitempty"`
	Status           string `xml:"Status,omitempty"`
	DueDate          string `xml:"DueDate,omitempty"`
	StartedDate      string `xml:"StartedDate,omitempty"`
	CompletedDate    string `xml:"CompletedDate,omitempty"`
	PercentCompleted string `xml:"PercentCompleted,omitempty"`
	Notes            string `xml:"Notes,omitempty"`
}

type wireAlarm struct {
	Type    string `xml:"type,attr,omitempty"`
	Minutes string `xml:",chardata"`
}

type wireException struct {
	OriginalDate string           `xml:"OriginalDate"`
	Replacement  *wireAppointment `xml:"Appointment"`
}

type wireRepeat struct {
	Type       string          `xml:"Type"`
	Frequency  string          `xml:"Frequency,omitempty"`
	Until      string          `xml:"Until,omitempty"`
	WeekMask   string          `xml:"WeekMask,omitempty"`
	Exceptions []wireException `xml:"Exception"`
}

type wireAppointment struct {
	XMLName xml.Name `xml:"Appointment"`
	wireCommon

	Description string     `xml:"Description,omitempty"`
	Location    string     `xml:"Location,omitempty"`
	Start       string     `xml:"Start,omitempty"`
	End         string     `xml:"End,omitempty"`
	AllDay      string     `xml:"AllDay,omitempty"`
	TimeZone    string     `xml:"TimeZone,omitempty"`
	Notes       string     `xml:"Notes,omitempty"`
	Alarm       *wireAlarm `xml:"Alarm"`

	Repeat *wireRepeat `xml:"Repeat"`
}
