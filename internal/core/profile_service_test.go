package core

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/example/collex/internal/models"
	"github.com/example/collex/pkg/cache"
)

func newTestProfileService(repo *memoryProfileRepository, media MediaService) ProfileService {
	return NewProfileService(repo, media, plainSealer{}, nil, cache.NewMemoryCache(), time.Hour, zap.NewNop())
}

func TestGetOrCreate_CreatesOnceWithEmailName(t *testing.T) {
	ctx := context.Background()
	svc := newTestProfileService(newMemoryProfileRepository(), new(MockMediaService))

	p, created, err := svc.GetOrCreate(ctx, owner)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "asha", p.Name)

	_, created, err = svc.GetOrCreate(ctx, owner)
	require.NoError(t, err)
	assert.False(t, created)
}

func TestGetOrCreate_NameIsEmailLocalPartEvenWithDisplayName(t *testing.T) {
	ctx := context.Background()
	svc := newTestProfileService(newMemoryProfileRepository(), new(MockMediaService))

	user := models.AuthUser{ID: "uid-9", Email: "22bcs042@iiitdmj.ac.in", DisplayName: "Ravi Kumar"}
	p, created, err := svc.GetOrCreate(ctx, user)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "22bcs042", p.Name)
}

func TestSave_SealsContactAndKeepsAvatar(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryProfileRepository()
	svc := newTestProfileService(repo, new(MockMediaService))

	avatar := "https://img/a.png"
	require.NoError(t, repo.Create(ctx, &models.Profile{ID: owner.ID, Name: "asha", AvatarURL: &avatar}))

	contact, loc := " 98765 ", "Hall 4"
	p, err := svc.Save(ctx, owner.ID, models.UpdateProfileRequest{Name: " Asha ", ContactInfo: &contact, Location: &loc})
	require.NoError(t, err)
	assert.Equal(t, "Asha", p.Name)
	require.NotNil(t, p.ContactInfo)
	assert.Equal(t, "98765", *p.ContactInfo)
	require.NotNil(t, p.AvatarURL)
	assert.Equal(t, avatar, *p.AvatarURL)

	stored := repo.profiles[owner.ID]["contactInfo"].(*string)
	assert.Equal(t, "sealed:98765", *stored)
}

func TestFieldEditor_OneFieldAtATime(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryProfileRepository()
	svc := newTestProfileService(repo, new(MockMediaService))
	const sid = "sid-1"

	_, err := svc.CommitField(ctx, sid, owner.ID, models.ProfileFieldName, "Asha")
	require.ErrorIs(t, err, ErrNotEditingField)

	st, err := svc.StartEdit(ctx, sid, models.ProfileFieldName)
	require.NoError(t, err)
	assert.True(t, st.Editing(models.ProfileFieldName))

	st, err = svc.StartEdit(ctx, sid, models.ProfileFieldLocation)
	require.NoError(t, err)
	assert.False(t, st.Editing(models.ProfileFieldName))
	assert.True(t, st.Editing(models.ProfileFieldLocation))

	_, err = svc.CommitField(ctx, sid, owner.ID, models.ProfileFieldName, "Asha")
	require.ErrorIs(t, err, ErrNotEditingField)

	p, err := svc.CommitField(ctx, sid, owner.ID, models.ProfileFieldLocation, " Hall 4 ")
	require.NoError(t, err)
	require.NotNil(t, p.Location)
	assert.Equal(t, "Hall 4", *p.Location)

	st, err = svc.EditState(ctx, sid)
	require.NoError(t, err)
	assert.True(t, st.Idle())
}

func TestFieldEditor_CancelAndUnknownField(t *testing.T) {
	ctx := context.Background()
	svc := newTestProfileService(newMemoryProfileRepository(), new(MockMediaService))
	const sid = "sid-2"

	_, err := svc.StartEdit(ctx, sid, models.ProfileField("email"))
	require.ErrorIs(t, err, ErrUnknownProfileField)

	_, err = svc.StartEdit(ctx, sid, models.ProfileFieldContactInfo)
	require.NoError(t, err)
	st, err := svc.CancelEdit(ctx, sid)
	require.NoError(t, err)
	assert.True(t, st.Idle())

	_, err = svc.CommitField(ctx, sid, owner.ID, models.ProfileFieldContactInfo, "x")
	assert.ErrorIs(t, err, ErrNotEditingField)
}

func TestFieldEditor_BlankNameRejected(t *testing.T) {
	ctx := context.Background()
	svc := newTestProfileService(newMemoryProfileRepository(), new(MockMediaService))

	_, err := svc.StartEdit(ctx, "sid", models.ProfileFieldName)
	require.NoError(t, err)
	_, err = svc.CommitField(ctx, "sid", owner.ID, models.ProfileFieldName, "  ")
	require.ErrorIs(t, err, ErrValidation)

	st, err := svc.EditState(ctx, "sid")
	require.NoError(t, err)
	assert.True(t, st.Editing(models.ProfileFieldName))
}

func TestUploadAvatar_StoresURL(t *testing.T) {
	ctx := context.Background()
	media := new(MockMediaService)
	svc := newTestProfileService(newMemoryProfileRepository(), media)

	file := models.FileUpload{Filename: "me.png", Data: []byte("png")}
	media.On("UploadAvatar", ctx, owner.ID, file).Return("https://img/avatars/me.png", nil)

	p, err := svc.UploadAvatar(ctx, owner.ID, file)
	require.NoError(t, err)
	require.NotNil(t, p.AvatarURL)
	assert.Equal(t, "https://img/avatars/me.png", *p.AvatarURL)
}

func TestFieldUpdatedMessage(t *testing.T) {
	assert.Equal(t, "Contact info updated successfully!", FieldUpdatedMessage(models.ProfileFieldContactInfo))
}
