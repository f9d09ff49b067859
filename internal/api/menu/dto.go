package menu

import "restaurant-app/internal/domain/menu"

type ItemResponse struct {
	menu.Item
	Tags []string `json:"tags"`
}

type CategoryResponse struct {
	menu.Category
	Items []ItemResponse `json:"items"`
}

func toItemResponse(it menu.Item) ItemResponse {
	return ItemResponse{Item: it, Tags: it.TagList()}
}

func toCategoryResponse(cat menu.Category) CategoryResponse {
	out := CategoryResponse{Category: cat, Items: make([]ItemResponse, 0, len(cat.Items))}
	for _, it := range cat.Items {
		out.Items = append(out.Items, toItemResponse(it))
	}
	return out
}
