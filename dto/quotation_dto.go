package dto

type CreateQuotationDTO struct {
	RequestText string `json:"requestText" binding:"required"`
}

type RespondQuotationDTO struct {
	AdminResponse string `json:"adminResponse" binding:"required"`
}
