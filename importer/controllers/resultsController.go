package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"tree-inventory-backend/db/models"
	"tree-inventory-backend/utils/pagination"
)

// resultSubtypes maps a results tab to the row statuses it shows.
var resultSubtypes = map[string][]string{
	"waiting":  {models.RowWaiting},
	"error":    {models.RowError},
	"watch":    {models.RowWatch},
	"success":  {models.RowSuccess, models.RowVerified},
	"verified": {models.RowVerified},
	"mergereq": {models.RowWatch, models.RowError},
}

type rowResult struct {
	Idx       int                    `json:"idx"`
	Status    string                 `json:"status"`
	Merged    bool                   `json:"merged"`
	Data      map[string]string      `json:"data"`
	Errors    models.FieldErrorList  `json:"errors"`
	MergeInfo map[string]interface{} `json:"merge_info,omitempty"`
}

// GetImportResultsController returns one page of an event's rows for a
// results tab. The mergereq tab narrows to rows blocked on species
// resolution and includes the candidate or diff payload the resolution
// screen renders.
func (ic *ImporterController) GetImportResultsController(c *fiber.Ctx) error {
	eventID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid event id",
			"error":   err.Error(),
		})
	}

	subtype := c.Params("subtype")
	statuses, ok := resultSubtypes[subtype]
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Unknown results subtype",
			"error":   subtype,
		})
	}

	params := pagination.ParsePaginationParams(c)
	params.PageSize = resultsPageSize
	if err := pagination.ValidatePaginationParams(params); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid pagination parameters",
			"error":   err.Error(),
		})
	}

	if subtype == "mergereq" {
		return ic.mergeRequiredResults(c, eventID, params)
	}

	offset := (params.Page - 1) * params.PageSize
	rows, total, err := ic.ImportRepo.RowsByStatus(eventID, statuses, offset, params.PageSize)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to load rows",
			"error":   err.Error(),
		})
	}

	items := make([]rowResult, 0, len(rows))
	for i := range rows {
		items = append(items, toRowResult(&rows[i]))
	}
	return c.JSON(pagination.NewPaginatedResponse(c, items, total, params))
}

// mergeRequiredResults pages in memory: merge-blocked rows are a filtered
// subset of the watch and error tabs and stay small in practice.
func (ic *ImporterController) mergeRequiredResults(c *fiber.Ctx, eventID uuid.UUID, params pagination.PaginationParams) error {
	rows, _, err := ic.ImportRepo.RowsByStatus(eventID, resultSubtypes["mergereq"], 0, 0)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to load rows",
			"error":   err.Error(),
		})
	}

	blocked := []rowResult{}
	for i := range rows {
		errs := rows[i].ErrorList()
		if errs.HasCode(models.ErrMergeRequired) || errs.HasCode(models.ErrTooManySpecies) {
			blocked = append(blocked, toRowResult(&rows[i]))
		}
	}

	start := (params.Page - 1) * params.PageSize
	end := start + params.PageSize
	if start > len(blocked) {
		start = len(blocked)
	}
	if end > len(blocked) {
		end = len(blocked)
	}
	return c.JSON(pagination.NewPaginatedResponse(c, blocked[start:end], int64(len(blocked)), params))
}

func toRowResult(row *models.ImportRow) rowResult {
	result := rowResult{
		Idx:    row.Idx,
		Status: row.Status,
		Merged: row.Merged,
		Data:   row.DataDict(),
		Errors: row.ErrorList(),
	}
	for _, fe := range result.Errors {
		if fe.Code == models.ErrMergeRequired || fe.Code == models.ErrTooManySpecies {
			result.MergeInfo = map[string]interface{}{
				"code": fe.Code,
				"data": fe.Data,
			}
			break
		}
	}
	return result
}
