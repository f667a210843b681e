package response

import (
	"time"

	"starter-api/internal/data/entity"
)

type ItemResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	OwnerID     string    `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ItemsResponse struct {
	Data  []ItemResponse `json:"data"`
	Count int            `json:"count"`
}

func ItemToResponse(item *entity.Item) ItemResponse {
	return ItemResponse{
		ID:          item.ID.String(),
		Title:       item.Title,
		Description: item.Description,
		OwnerID:     item.UserID.String(),
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
}

func ItemsToResponse(items []*entity.Item) ItemsResponse {
	data := make([]ItemResponse, 0, len(items))
	for _, item := range items {
		data = append(data, ItemToResponse(item))
	}
	return ItemsResponse{Data: data, Count: len(data)}
}
