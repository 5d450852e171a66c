package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/tradejournal/internal/common"
	"github.com/dmitrijs2005/tradejournal/internal/server/models"
	"github.com/dmitrijs2005/tradejournal/internal/server/repositories/repomanager"
)

type AssetService struct {
	repomanager repomanager.RepositoryManager
}

func NewAssetService(m repomanager.RepositoryManager) *AssetService {
	return &AssetService{repomanager: m}
}

func (s *AssetService) List(ctx context.Context, userID string) ([]*models.Asset, error) {
	list, err := s.repomanager.Assets().ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing assets: %w", err)
	}
	return list, nil
}

func (s *AssetService) Create(ctx context.Context, userID, name string) (*models.Asset, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, common.NewValidationError(common.CodeMissingFields, "assetName is required")
	}

	asset, err := s.repomanager.Assets().Create(ctx, &models.Asset{UserID: userID, AssetName: name})
	if err != nil {
		return nil, fmt.Errorf("error creating asset: %w", err)
	}
	return asset, nil
}

// Delete removes an asset owned by userID. Assets of other users are
// reported as not found.
func (s *AssetService) Delete(ctx context.Context, userID, id string) error {
	repo := s.repomanager.Assets()

	asset, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return err
		}
		return fmt.Errorf("error getting asset: %w", err)
	}
	if asset.UserID != userID {
		return common.ErrorNotFound
	}

	if _, err := repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("error deleting asset: %w", err)
	}
	return nil
}
