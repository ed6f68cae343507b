package repository_test

import (
	"context"
	"testing"
	"time"

	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"cpfregistry/internal/adapter/database/sqlite"
	"cpfregistry/internal/adapter/database/sqlite/repository"
	"cpfregistry/internal/core/domain"
	"cpfregistry/internal/core/port"
	"cpfregistry/internal/core/telemetry"
	. "cpfregistry/pkg/test"
	"cpfregistry/pkg/test/factory"
)

type UserRepositoryTestSuite struct {
	suite.Suite
	db   *sqlite.DB
	repo port.UserStore
	ctx  context.Context
}

func (s *UserRepositoryTestSuite) SetupTest() {
	s.db = InitTestDB(s.T())
	s.repo = repository.NewUserRepository(s.db, telemetry.NewNoOpProbe())
	s.ctx = context.Background()
}

func TestUserRepositoryTestSuite(t *testing.T) {
	RegisterTestingT(t)
	suite.Run(t, new(UserRepositoryTestSuite))
}

func (s *UserRepositoryTestSuite) create(overrides ...map[string]any) domain.User {
	user := factory.NewUser(overrides...)
	s.Require().NoError(s.repo.Create(s.ctx, user))
	return user
}

func (s *UserRepositoryTestSuite) TestRepository_Create_Success() {
	user := s.create()

	exists, err := s.repo.IsExistentID(s.ctx, user.ID())

	assert.NoError(s.T(), err)
	assert.True(s.T(), exists)
}

func (s *UserRepositoryTestSuite) TestRepository_FindAll_InsertionOrder() {
	first := s.create()
	second := s.create()
	third := s.create()

	users, err := s.repo.FindAll(s.ctx)

	Expect(err).ToNot(HaveOccurred())
	Expect(users).To(HaveLen(3))
	Expect(users[0].ID()).To(Equal(first.ID()))
	Expect(users[1].ID()).To(Equal(second.ID()))
	Expect(users[2].ID()).To(Equal(third.ID()))
	Expect(users[0].Cpf()).To(Equal(first.Cpf()))
	Expect(users[0].DateCreation()).To(BeTemporally("==", first.DateCreation()))
}

func (s *UserRepositoryTestSuite) TestRepository_FindAll_Empty() {
	users, err := s.repo.FindAll(s.ctx)

	Expect(err).ToNot(HaveOccurred())
	Expect(users).ToNot(BeNil())
	Expect(users).To(BeEmpty())
}

func (s *UserRepositoryTestSuite) TestRepository_DuplicatePredicates() {
	user := s.create()

	cpfTaken, err := s.repo.IsCpfAlreadyCreated(s.ctx, user.Cpf(), "")
	assert.NoError(s.T(), err)
	assert.True(s.T(), cpfTaken)

	emailTaken, err := s.repo.IsEmailAlreadyCreated(s.ctx, user.Email(), "")
	assert.NoError(s.T(), err)
	assert.True(s.T(), emailTaken)

	ownCpf, err := s.repo.IsCpfAlreadyCreated(s.ctx, user.Cpf(), user.ID())
	assert.NoError(s.T(), err)
	assert.False(s.T(), ownCpf)

	freeEmail, err := s.repo.IsEmailAlreadyCreated(s.ctx, "nobody@example.com", "")
	assert.NoError(s.T(), err)
	assert.False(s.T(), freeEmail)
}

func (s *UserRepositoryTestSuite) TestRepository_FindByID_Eligibility() {
	old := s.create(map[string]any{
		"DateCreation": domain.FormatDateTime(time.Now().AddDate(-1, 0, 0)),
	})
	recent := s.create()

	oldDetails, err := s.repo.FindByID(s.ctx, old.ID())
	Expect(err).ToNot(HaveOccurred())
	Expect(oldDetails.IsCreditEligible).To(BeTrue())
	Expect(oldDetails.Email()).To(Equal(old.Email()))

	recentDetails, err := s.repo.FindByID(s.ctx, recent.ID())
	Expect(err).ToNot(HaveOccurred())
	Expect(recentDetails.IsCreditEligible).To(BeFalse())
}

func (s *UserRepositoryTestSuite) TestRepository_FindByID_NotFound() {
	_, err := s.repo.FindByID(s.ctx, "00000000-0000-0000-0000-000000000000")

	assert.True(s.T(), domain.IsNotFoundError(err))
}

func (s *UserRepositoryTestSuite) TestRepository_EditFields() {
	user := s.create()
	editedAt := time.Now().UTC().Truncate(time.Second)
	cpf := factory.NewCpf()

	Expect(s.repo.EditName(s.ctx, domain.FieldEdit{ID: user.ID(), Value: "Renamed", DateEdition: editedAt})).To(Succeed())
	Expect(s.repo.EditCpf(s.ctx, domain.FieldEdit{ID: user.ID(), Value: cpf, DateEdition: editedAt})).To(Succeed())
	Expect(s.repo.EditEmail(s.ctx, domain.FieldEdit{ID: user.ID(), Value: "renamed@example.com", DateEdition: editedAt})).To(Succeed())

	details, err := s.repo.FindByID(s.ctx, user.ID())
	Expect(err).ToNot(HaveOccurred())
	Expect(details.Name()).To(Equal("Renamed"))
	Expect(details.Cpf()).To(Equal(cpf))
	Expect(details.Email()).To(Equal("renamed@example.com"))

	edition, ok := details.DateEdition()
	Expect(ok).To(BeTrue())
	Expect(edition).To(BeTemporally("==", editedAt))
	Expect(details.DateCreation()).To(BeTemporally("==", user.DateCreation()))
}

func (s *UserRepositoryTestSuite) TestRepository_Edit_UnknownID() {
	err := s.repo.EditName(s.ctx, domain.FieldEdit{
		ID:          "00000000-0000-0000-0000-000000000000",
		Value:       "Nobody",
		DateEdition: time.Now(),
	})

	assert.True(s.T(), domain.IsNotFoundError(err))
}

func (s *UserRepositoryTestSuite) TestRepository_EditCpf_UniqueIndex() {
	taken := s.create()
	user := s.create()

	err := s.repo.EditCpf(s.ctx, domain.FieldEdit{ID: user.ID(), Value: taken.Cpf(), DateEdition: time.Now()})

	assert.True(s.T(), domain.IsDuplicateError(err))
}

func (s *UserRepositoryTestSuite) TestRepository_Delete_SoftDeletes() {
	user := s.create()

	Expect(s.repo.Delete(s.ctx, user.ID())).To(Succeed())

	exists, err := s.repo.IsExistentID(s.ctx, user.ID())
	Expect(err).ToNot(HaveOccurred())
	Expect(exists).To(BeFalse())

	users, err := s.repo.FindAll(s.ctx)
	Expect(err).ToNot(HaveOccurred())
	Expect(users).To(BeEmpty())

	_, err = s.repo.FindByID(s.ctx, user.ID())
	Expect(domain.IsNotFoundError(err)).To(BeTrue())

	var rows int
	Expect(s.db.QueryRow("SELECT COUNT(1) FROM users WHERE id = ? AND deleted_at IS NOT NULL", user.ID()).Scan(&rows)).To(Succeed())
	Expect(rows).To(Equal(1))

	Expect(domain.IsNotFoundError(s.repo.Delete(s.ctx, user.ID()))).To(BeTrue())
}

func (s *UserRepositoryTestSuite) TestRepository_Delete_FreesCpfAndEmail() {
	user := s.create()
	Expect(s.repo.Delete(s.ctx, user.ID())).To(Succeed())

	cpfTaken, err := s.repo.IsCpfAlreadyCreated(s.ctx, user.Cpf(), "")
	Expect(err).ToNot(HaveOccurred())
	Expect(cpfTaken).To(BeFalse())

	s.create(map[string]any{"Cpf": user.Cpf(), "Email": user.Email()})
}

func (s *UserRepositoryTestSuite) TestCleanDB() {
	s.create()
	CleanDB(s.T(), s.db)

	users, err := s.repo.FindAll(s.ctx)
	Expect(err).ToNot(HaveOccurred())
	Expect(users).To(BeEmpty())
}
