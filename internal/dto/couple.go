package dto

// ConnectCoupleRequest links the acting member with a partner and anchors
// their shared first-met date.
type ConnectCoupleRequest struct {
	PartnerID string `json:"partnerId" validate:"required"`
	FirstDate string `json:"firstDate" validate:"required"`
}

// CoupleResponse describes a connected couple.
type CoupleResponse struct {
	ID        string `json:"id"`
	FirstDate string `json:"firstDate"`
}
