package user

type Status string

const (
	StatusInvited Status = "Invited"
	StatusPaid    Status = "Paid"
)

// User mirrors a row of the Airtable "User" table. ID is assigned by the
// record store and is opaque to this service.
type User struct {
	ID         string   `json:"userId"`
	Name       string   `json:"name"`
	Email      string   `json:"email"`
	Phone      string   `json:"phone"`
	Status     Status   `json:"status"`
	ReferredBy []string `json:"referredBy,omitempty"`
	RefCode    string   `json:"refCode,omitempty"`
}

func (u User) IsPaid() bool {
	return u.Status == StatusPaid
}

// Changes lists the columns written by a registration or a payment. Empty
// strings and a nil ReferredBy leave the stored value untouched.
type Changes struct {
	Name       string
	Email      string
	Phone      string
	Status     Status
	ReferredBy []string
}
