package auth

import (
	"fmt"
	"github.com/ougirez/pricelist/internal/domain"
	"github.com/ougirez/pricelist/internal/pkg/constants"
	"github.com/ougirez/pricelist/internal/pkg/utils"
)

type Service struct {
	secret string
}

func NewService(secret string) *Service {
	return &Service{secret: secret}
}

func (svc *Service) Claims(token string) (*domain.Claims, error) {
	claims, err := utils.ParseAuthToken(token, svc.secret)
	if err != nil {
		return nil, fmt.Errorf("utils.ParseAuthToken: %w", err)
	}
	return claims, nil
}

// TenantID resolves the tenant from the company_id claim of token.
func (svc *Service) TenantID(token string) (string, error) {
	claims, err := svc.Claims(token)
	if err != nil {
		return "", err
	}
	if claims.CompanyID == "" {
		return "", fmt.Errorf("token has no company_id: %w", constants.ErrUnauthorized)
	}
	return claims.CompanyID, nil
}
