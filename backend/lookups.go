package backend

import (
	"context"
	"fmt"
	"strings"

	"fund-portal/models"

	"github.com/tidwall/gjson"
)

// listItems finds the array in the envelopes the backend wraps lists in.
func listItems(body []byte, keys ...string) []gjson.Result {
	root := gjson.ParseBytes(body)
	if root.IsArray() {
		return root.Array()
	}
	for _, key := range keys {
		if value := root.Get(key); value.IsArray() {
			return value.Array()
		}
	}
	return nil
}

func firstInt(item gjson.Result, keys ...string) int {
	for _, key := range keys {
		if value := item.Get(key); value.Exists() && value.Int() > 0 {
			return int(value.Int())
		}
	}
	return 0
}

func firstString(item gjson.Result, keys ...string) string {
	for _, key := range keys {
		if value := strings.TrimSpace(item.Get(key).String()); value != "" {
			return value
		}
	}
	return ""
}

// GetStatuses loads the application_status lookup.
func (c *Client) GetStatuses(ctx context.Context) ([]models.ApplicationStatus, error) {
	body, err := c.get(ctx, "application_status", c.resolve("/api/v1/application-status", nil))
	if err != nil {
		return nil, err
	}
	items := listItems(body, "data", "statuses", "items")
	statuses := make([]models.ApplicationStatus, 0, len(items))
	for _, item := range items {
		id := firstInt(item, "application_status_id", "ApplicationStatusID", "applicationStatusId", "status_id", "id")
		if id == 0 {
			continue
		}
		statuses = append(statuses, models.ApplicationStatus{
			ApplicationStatusID: id,
			StatusCode:          firstString(item, "status_code", "StatusCode", "statusCode", "code"),
			StatusName:          firstString(item, "status_name", "StatusName", "statusName", "name"),
		})
	}
	return statuses, nil
}

// GetLookups loads the category and subcategory names.
func (c *Client) GetLookups(ctx context.Context) (models.Lookups, error) {
	lookups := models.Lookups{
		Categories:    map[int]string{},
		Subcategories: map[int]string{},
	}

	body, err := c.get(ctx, "categories", c.resolve("/api/v1/categories", nil))
	if err != nil {
		return lookups, fmt.Errorf("load categories: %w", err)
	}
	for _, item := range listItems(body, "data", "categories", "items") {
		id := firstInt(item, "category_id", "CategoryID", "categoryId", "id")
		name := firstString(item, "category_name", "CategoryName", "categoryName", "name_th", "name")
		if id > 0 && name != "" {
			lookups.Categories[id] = name
		}
	}

	body, err = c.get(ctx, "subcategories", c.resolve("/api/v1/subcategories", nil))
	if err != nil {
		return lookups, fmt.Errorf("load subcategories: %w", err)
	}
	for _, item := range listItems(body, "data", "subcategories", "items") {
		id := firstInt(item, "subcategory_id", "SubcategoryID", "subcategoryId", "id")
		name := firstString(item, "subcategory_name", "SubcategoryName", "subcategoryName", "name_th", "name")
		if id > 0 && name != "" {
			lookups.Subcategories[id] = name
		}
	}
	return lookups, nil
}
