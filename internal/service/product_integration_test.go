package service_test

import (
	"github.com/kippeer/go-store-api/internal/domain"
	"github.com/kippeer/go-store-api/internal/repository"
)

func (s *IntegrationTestSuite) TestProductList_FiltersByCategoryAndPrice() {
	cheap := s.seedProduct("Pen", "2.50", 100)
	s.seedProduct("Monitor", "900.00", 5)

	category := "test"
	maxPrice := decFromString("10.00")

	products, total, err := s.ProductRepo.List(s.Ctx, &domain.ProductFilter{
		Category: &category,
		MaxPrice: maxPrice,
	}, 10, 0)
	s.Require().NoError(err)

	s.Require().Equal(int64(1), total)
	s.Require().Len(products, 1)
	s.Require().Equal(cheap.ID, products[0].ID)
}

func (s *IntegrationTestSuite) TestProductSearch_MatchesNameAndDescription() {
	s.seedProduct("Gaming Keyboard", "150.00", 10)
	s.seedProduct("Office Chair", "300.00", 3)

	products, total, err := s.ProductRepo.Search(s.Ctx, "keyboard", 10, 0)
	s.Require().NoError(err)

	s.Require().Equal(int64(1), total)
	s.Require().Len(products, 1)
	s.Require().Equal("Gaming Keyboard", products[0].Name)
}

func (s *IntegrationTestSuite) TestProductLowStock_ExcludesInactive() {
	low := s.seedProduct("Almost gone", "10.00", 2)
	s.seedProduct("Plenty", "10.00", 500)
	hidden := s.seedProduct("Hidden", "10.00", 1)

	inactive := false
	s.Require().NoError(s.ProductRepo.Update(s.Ctx, hidden.ID, &domain.ProductPatch{Active: &inactive}))

	products, err := s.ProductRepo.FindLowStock(s.Ctx, 10)
	s.Require().NoError(err)

	s.Require().Len(products, 1)
	s.Require().Equal(low.ID, products[0].ID)
}

func (s *IntegrationTestSuite) TestProductUpdate_PartialPatch() {
	product := s.seedProduct("Widget", "10.00", 5)

	newPrice := decFromString("12.00")
	s.Require().NoError(s.ProductRepo.Update(s.Ctx, product.ID, &domain.ProductPatch{Price: newPrice}))

	stored, err := s.ProductRepo.GetByID(s.Ctx, product.ID)
	s.Require().NoError(err)

	s.Require().Equal("12.00", stored.Price.StringFixed(2))
	s.Require().Equal(product.Name, stored.Name)
	s.Require().Equal(product.StockQuantity, stored.StockQuantity)
}

func (s *IntegrationTestSuite) TestProductDelete_NotFound() {
	err := s.ProductRepo.DeleteByID(s.Ctx, 424242)
	s.Require().ErrorIs(err, repository.ErrProductNotFound)
}

func (s *IntegrationTestSuite) TestUserCreate_DuplicateUsername() {
	s.seedUser("maria")

	_, err := s.UserRepo.Create(s.Ctx, &domain.User{
		Username:     "maria",
		Email:        "other@example.com",
		PasswordHash: "irrelevant",
		Roles:        []domain.Role{domain.RoleClient},
	})
	s.Require().ErrorIs(err, repository.ErrUserAlreadyExists)
}
