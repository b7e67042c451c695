package communication

import "errors"

type CreateCommunicationDTO struct {
	CustomerID *int64 `json:"customer_id,omitempty"`
	LeadID     *int64 `json:"lead_id,omitempty"`
	Channel    string `json:"channel"`
	Direction  string `json:"direction"`
	Recipient  string `json:"recipient"`
	Subject    string `json:"subject"`
	Body       string `json:"body"`
}

func (dto CreateCommunicationDTO) Validate() error {
	if !ValidChannel(dto.Channel) {
		return errors.New("invalid communication channel")
	}
	if dto.Direction != "" && dto.Direction != DirectionInbound && dto.Direction != DirectionOutbound {
		return errors.New("direction must be inbound or outbound")
	}
	if dto.Body == "" {
		return errors.New("body is required")
	}
	if DeliverableChannel(dto.Channel) && dto.Direction != DirectionInbound && dto.Recipient == "" {
		return errors.New("recipient is required for outbound email and sms")
	}
	return nil
}
