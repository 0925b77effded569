package models

// ApiResponse is the envelope used by the catalog, profile and listing reads.
type ApiResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Count   int         `json:"count,omitempty"`
}

func SuccessResponse(data interface{}, message string) ApiResponse {
	return ApiResponse{
		Success: true,
		Data:    data,
		Message: message,
	}
}

func ListResponse[T any](items []T) ApiResponse {
	return ApiResponse{
		Success: true,
		Data:    items,
		Count:   len(items),
	}
}
