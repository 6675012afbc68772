package controller

import (
	"fmt"
	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
	"github.com/ougirez/pricelist/internal/domain"
	"github.com/ougirez/pricelist/internal/domain/dto"
	"github.com/ougirez/pricelist/internal/pkg/constants"
	"github.com/ougirez/pricelist/internal/pkg/utils"
	"io"
	"net/http"
	"strconv"
)

const defaultPreviewRows = 20

func formFile(ctx echo.Context) (string, []byte, error) {
	header, err := ctx.FormFile("file")
	if err != nil {
		return "", nil, fmt.Errorf("file is required: %w", constants.ErrBadRequest)
	}

	file, err := header.Open()
	if err != nil {
		return "", nil, fmt.Errorf("header.Open: %w", err)
	}
	defer file.Close()

	buf, err := io.ReadAll(file)
	if err != nil {
		return "", nil, fmt.Errorf("io.ReadAll: %w", err)
	}

	return header.Filename, buf, nil
}

func formInt(ctx echo.Context, name string, def int) (int, error) {
	value := ctx.FormValue(name)
	if value == "" {
		return def, nil
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", name, constants.ErrBadRequest)
	}
	return n, nil
}

func (c *Controller) PreviewPricelist(ctx echo.Context) error {
	fileName, buf, err := formFile(ctx)
	if err != nil {
		return err
	}

	req := dto.PreviewRequest{
		ProviderID: ctx.FormValue("provider_id"),
		FileName:   fileName,
		FileBuffer: buf,
	}
	if req.PreviewRows, err = formInt(ctx, "preview_rows", defaultPreviewRows); err != nil {
		return err
	}
	if req.StartPreviewFrom, err = formInt(ctx, "start_preview_from", 0); err != nil {
		return err
	}

	res, err := c.service.Preview(ctx.Request().Context(), req)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, res)
}

func (c *Controller) UploadPricelist(ctx echo.Context) error {
	fileName, buf, err := formFile(ctx)
	if err != nil {
		return err
	}

	req := dto.StartUploadRequest{
		ProviderID: ctx.FormValue("provider_id"),
		FileName:   fileName,
		FileBuffer: buf,
		Currency:   ctx.FormValue("currency"),
		TenantID:   ctx.FormValue("tenant_id"),
		AuthToken:  utils.AuthToken(ctx.Request()),
		LoadedID:   ctx.FormValue("loaded_id"),
	}

	if mapping := ctx.FormValue("mapping"); mapping != "" {
		var rows []domain.TemplateRow
		if err = sonic.UnmarshalString(mapping, &rows); err != nil {
			return fmt.Errorf("mapping is not valid JSON: %w", constants.ErrBadRequest)
		}
		req.Mapping = rows
	}

	if req.Settings.StartFrom, err = formInt(ctx, "start_from", 0); err != nil {
		return err
	}
	if req.Settings.ChunkSize, err = formInt(ctx, "chunk_size", 0); err != nil {
		return err
	}
	if req.Settings.ConcurrencyLimit, err = formInt(ctx, "concurrency", 0); err != nil {
		return err
	}

	started, err := c.service.StartUpload(ctx.Request().Context(), req)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusAccepted, started)
}
