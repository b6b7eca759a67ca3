package services_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"dms/internal/apperr"
	"dms/internal/models"
	"dms/internal/repositories"
	"dms/internal/services"
	"dms/internal/store/storetest"
	"dms/pkg/password"
)

type directory struct {
	profiles  *services.ProfileService
	documents *services.DocumentService
	search    *services.SearchService
}

func newDirectory(t *testing.T) directory {
	s := storetest.New(t)
	profiles := repositories.NewGORMProfileRepository(s)
	logins := repositories.NewGORMLoginRepository(s)
	documents := repositories.NewGORMDocumentRepository(s)
	return directory{
		profiles:  services.NewProfileService(s, profiles, logins, documents, password.NewBcrypt(bcrypt.MinCost), nil, nil),
		documents: services.NewDocumentService(s, documents, profiles, nil, nil),
		search:    services.NewSearchService(profiles, documents, nil),
	}
}

func TestDirectory_Scenario(t *testing.T) {
	dir := newDirectory(t)
	ctx := context.Background()

	alice, err := dir.profiles.RegisterProfile(ctx, models.Registration{Email: "a@x.com", Username: "alice", Password: "p1"})
	require.NoError(t, err)
	assert.Equal(t, uint(1), alice.ID)

	_, err = dir.profiles.RegisterProfile(ctx, models.Registration{Email: "other@x.com", Username: "alice", Password: "p2"})
	assert.ErrorIs(t, err, apperr.ErrConflict)

	_, err = dir.profiles.RegisterProfile(ctx, models.Registration{Email: "a@x.com", Username: "alice2", Password: "p2"})
	assert.ErrorIs(t, err, apperr.ErrConflict)

	hello, err := dir.documents.CreateDocument(ctx, models.NewDocument{Title: "Hello", Body: "body", AuthorID: 1})
	require.NoError(t, err)
	assert.Equal(t, uint(1), hello.AuthorID)

	_, err = dir.documents.CreateDocument(ctx, models.NewDocument{Title: "Hi", Body: "body", AuthorID: 999})
	assert.ErrorIs(t, err, apperr.ErrInvalidReference)

	identity, err := dir.profiles.Authenticate(ctx, "alice", "p1")
	require.NoError(t, err)
	require.NotNil(t, identity.LastLogin)

	_, err = dir.profiles.Authenticate(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, apperr.ErrAuthentication)
}

func TestDirectory_MultiBytePasswordLimit(t *testing.T) {
	dir := newDirectory(t)
	ctx := context.Background()

	_, err := dir.profiles.RegisterProfile(ctx, models.Registration{
		Email: "e@x.com", Username: "eve", Password: strings.Repeat("é", 40),
	})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	// 36 two-byte characters fit exactly
	eve, err := dir.profiles.RegisterProfile(ctx, models.Registration{
		Email: "e@x.com", Username: "eve", Password: strings.Repeat("é", 36),
	})
	require.NoError(t, err)
	_, err = dir.profiles.Authenticate(ctx, "eve", strings.Repeat("é", 36))
	require.NoError(t, err)

	secret := strings.Repeat("é", 37)
	_, err = dir.profiles.UpdateProfile(ctx, eve.ID, models.ProfileUpdate{Password: &secret})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestDirectory_SearchProfiles(t *testing.T) {
	dir := newDirectory(t)
	ctx := context.Background()

	_, err := dir.profiles.RegisterProfile(ctx, models.Registration{Email: "a@x.com", Fullname: "Alice", Username: "alice", Password: "p1"})
	require.NoError(t, err)
	_, err = dir.profiles.RegisterProfile(ctx, models.Registration{Email: "b@x.com", Fullname: "Bob", Username: "bob", Password: "p2"})
	require.NoError(t, err)

	found, err := dir.search.SearchProfiles(ctx, "ali", services.SearchByUsername, repositories.Page{})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "alice", found[0].Username)

	found, err = dir.search.SearchProfiles(ctx, "zzz", services.SearchByUsername, repositories.Page{})
	require.NoError(t, err)
	assert.Empty(t, found)

	found, err = dir.search.SearchProfiles(ctx, "b@x", services.SearchByEmail, repositories.Page{})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "bob", found[0].Username)
}

func TestDirectory_SoftDeletedAuthor(t *testing.T) {
	dir := newDirectory(t)
	ctx := context.Background()

	author, err := dir.profiles.RegisterProfile(ctx, models.Registration{Email: "a@x.com", Username: "alice", Password: "p1"})
	require.NoError(t, err)
	doc, err := dir.documents.CreateDocument(ctx, models.NewDocument{Title: "Hello", AuthorID: author.ID})
	require.NoError(t, err)

	require.NoError(t, dir.profiles.SoftDeleteProfile(ctx, author.ID))

	_, err = dir.profiles.FetchActiveProfile(ctx, author.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.ErrorIs(t, dir.profiles.SoftDeleteProfile(ctx, author.ID), apperr.ErrNotFound)

	// documents of a deleted author still resolve
	fetched, err := dir.documents.FetchDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, author.ID, fetched.AuthorID)

	_, err = dir.documents.CreateDocument(ctx, models.NewDocument{Title: "Later", AuthorID: author.ID})
	assert.ErrorIs(t, err, apperr.ErrInvalidReference)

	_, err = dir.profiles.Authenticate(ctx, "alice", "p1")
	assert.ErrorIs(t, err, apperr.ErrAuthentication)

	// email and username of a deleted profile can be reused
	again, err := dir.profiles.RegisterProfile(ctx, models.Registration{Email: "a@x.com", Username: "alice", Password: "p3"})
	require.NoError(t, err)
	assert.NotEqual(t, author.ID, again.ID)

	// the old profile is still referenced by its document
	assert.ErrorIs(t, dir.profiles.PurgeProfile(ctx, author.ID), apperr.ErrConflict)
}

func TestDirectory_PurgeProfile(t *testing.T) {
	dir := newDirectory(t)
	ctx := context.Background()

	p, err := dir.profiles.RegisterProfile(ctx, models.Registration{Email: "a@x.com", Username: "alice", Password: "p1"})
	require.NoError(t, err)

	assert.ErrorIs(t, dir.profiles.PurgeProfile(ctx, p.ID), apperr.ErrConflict)
	require.NoError(t, dir.profiles.SoftDeleteProfile(ctx, p.ID))
	require.NoError(t, dir.profiles.PurgeProfile(ctx, p.ID))
	assert.ErrorIs(t, dir.profiles.PurgeProfile(ctx, p.ID), apperr.ErrNotFound)
}

func TestDirectory_UpdateProfile(t *testing.T) {
	dir := newDirectory(t)
	ctx := context.Background()

	alice, err := dir.profiles.RegisterProfile(ctx, models.Registration{Email: "a@x.com", Username: "alice", Password: "p1"})
	require.NoError(t, err)
	_, err = dir.profiles.RegisterProfile(ctx, models.Registration{Email: "b@x.com", Username: "bob", Password: "p2"})
	require.NoError(t, err)

	taken := "bob"
	_, err = dir.profiles.UpdateProfile(ctx, alice.ID, models.ProfileUpdate{Username: &taken})
	assert.ErrorIs(t, err, apperr.ErrConflict)

	email, fullname, secret := "alice@x.com", "Alice A.", "p9"
	updated, err := dir.profiles.UpdateProfile(ctx, alice.ID, models.ProfileUpdate{Email: &email, Fullname: &fullname, Password: &secret})
	require.NoError(t, err)
	assert.Equal(t, "alice@x.com", updated.Email)
	assert.Equal(t, "Alice A.", updated.Fullname)
	assert.Equal(t, "alice", updated.Username)

	_, err = dir.profiles.Authenticate(ctx, "alice", "p1")
	assert.ErrorIs(t, err, apperr.ErrAuthentication)
	_, err = dir.profiles.Authenticate(ctx, "alice", "p9")
	assert.NoError(t, err)

	listed, err := dir.profiles.ListActiveProfiles(ctx, repositories.Page{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "bob", listed[0].Username)
}

func TestDirectory_Documents(t *testing.T) {
	dir := newDirectory(t)
	ctx := context.Background()

	author, err := dir.profiles.RegisterProfile(ctx, models.Registration{Email: "a@x.com", Username: "alice", Password: "p1"})
	require.NoError(t, err)
	first, err := dir.documents.CreateDocument(ctx, models.NewDocument{Title: "Release notes", AuthorID: author.ID})
	require.NoError(t, err)
	_, err = dir.documents.CreateDocument(ctx, models.NewDocument{Title: "Roadmap", AuthorID: author.ID})
	require.NoError(t, err)

	title := "Release notes v2"
	updated, err := dir.documents.UpdateDocument(ctx, first.ID, models.DocumentUpdate{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)

	found, err := dir.search.SearchDocuments(ctx, "notes", repositories.Page{})
	require.NoError(t, err)
	require.Len(t, found, 1)

	require.NoError(t, dir.documents.SoftDeleteDocument(ctx, first.ID))
	assert.ErrorIs(t, dir.documents.SoftDeleteDocument(ctx, first.ID), apperr.ErrNotFound)

	_, err = dir.documents.UpdateDocument(ctx, first.ID, models.DocumentUpdate{Title: &title})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	byAuthor, err := dir.documents.FetchDocumentsByAuthor(ctx, author.ID, repositories.Page{})
	require.NoError(t, err)
	require.Len(t, byAuthor, 1)
	assert.Equal(t, "Roadmap", byAuthor[0].Title)

	all, err := dir.documents.ListDocuments(ctx, repositories.Page{})
	require.NoError(t, err)
	assert.Len(t, all, 1)

	found, err = dir.search.SearchDocuments(ctx, "notes", repositories.Page{})
	require.NoError(t, err)
	assert.Empty(t, found)
}
