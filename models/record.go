package models

import "time"

// Kind tags the variant held by a [Record].
type Kind int

const (
	KindUnknown Kind = iota
	KindContact
	KindTask
	KindAppointment
)

// String returns the root element name used for the kind on the wire.
func (k Kind) String() string {
	switch k {
	case KindContact:
		return "Contact"
	case KindTask:
		return "Task"
	case KindAppointment:
		return "Appointment"
	default:
		return "Unknown"
	}
}

// Dataset returns the dataset that stores records of this kind.
func (k Kind) Dataset() Dataset {
	switch k {
	case KindContact:
		return Contacts
	case KindTask:
		return Tasks
	case KindAppointment:
		return Appointments
	default:
		return ""
	}
}

// Record is one PIM record of any kind. Exactly one of Contact, Task and
// Appointment is set, matching Kind.
//
// ID is the local (device) identifier. When a record arrives from the peer
// with an identifier the device has never issued, ID is empty and PeerID
// holds the raw peer identifier until the record is mapped.
type Record struct {
	Kind   Kind
	ID     string
	PeerID string

	// Categories holds category ids. A value may temporarily be a category
	// label (placeholder) until the owning transaction materializes it.
	Categories   []string
	CustomFields map[string]string

	Contact     *Contact
	Task        *Task
	Appointment *Appointment
}

// HasLocalID reports whether the record carries a device identifier.
func (r *Record) HasLocalID() bool {
	return r.ID != ""
}

// Contact is an address-book entry.
type Contact struct {
	NameTitle  string
	FirstName  string
	MiddleName string
	LastName   string
	Suffix     string
	Nickname   string

	Company    string
	Department string
	JobTitle   string

	PhoneNumbers []PhoneNumber
	Emails       []string

	HomeAddress     Address
	BusinessAddress Address

	Birthday    time.Time
	Anniversary time.Time
	Gender      string
	Notes       string
}

// PhoneNumber is one typed phone number of a contact.
type PhoneNumber struct {
	Type   string
	Number string
}

// Address is a postal address.
type Address struct {
	Street  string
	City    string
	State   string
	Zip     string
	Country string
}

// IsZero reports whether no address field is set.
func (a Address) IsZero() bool {
	return a == Address{}
}

// TaskStatus is the progress state of a task.
type TaskStatus string

const (
	TaskNotStarted TaskStatus = "NotStarted"
	TaskInProgress TaskStatus = "InProgress"
	TaskCompleted  TaskStatus = "Completed"
	TaskWaiting    TaskStatus = "Waiting"
	TaskDeferred   TaskStatus = "Deferred"
)

// Valid reports whether s is one of the known task states.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskNotStarted, TaskInProgress, TaskCompleted, TaskWaiting, TaskDeferred:
		return true
	}
	return false
}

// Task is a to-do item.
type Task struct {
	Description      string
	Priority         int
	Status           TaskStatus
	DueDate          time.Time
	StartedDate      time.Time
	CompletedDate    time.Time
	PercentCompleted int
	Notes            string
}

// WireRecord is a record in wire form together with the dataset it is
// pushed to.
type WireRecord struct {
	Dataset Dataset
	Data    []byte
}
