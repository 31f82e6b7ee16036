package dto

// UnreadCountResponse carries the number of unread notifications.
type UnreadCountResponse struct {
	Count int `json:"count"`
}
