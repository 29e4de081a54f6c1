package model

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

// PaymentTransaction mirrors one Stripe checkout session. Amount is in the
// smallest currency unit (cents) and always comes from the server-side
// price table, never from the client.
// swagger:model PaymentTransaction
type PaymentTransaction struct {
	UUIDBase
	UserID        string        `gorm:"type:varchar(36);index;not null" json:"user_id"`
	CourseTypeID  string        `gorm:"type:varchar(36);index;not null" json:"course_type_id"`
	SessionID     string        `gorm:"size:255;uniqueIndex;not null" json:"session_id"`
	Amount        int64         `gorm:"not null" json:"amount"`
	Currency      string        `gorm:"size:10;default:'usd'" json:"currency"`
	PaymentStatus PaymentStatus `gorm:"size:30;default:'pending'" json:"payment_status"`
}

func (PaymentTransaction) TableName() string {
	return "payment_transactions"
}
