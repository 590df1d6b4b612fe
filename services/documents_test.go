package services

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/RupeshSangoju/quickverdicts-sub001/models"
)

type destroyed struct {
	publicID, resourceType string
}

type fakeAssets struct {
	destroyed []destroyed
	err       error
}

func (a *fakeAssets) SignUpload(folder string) (UploadSignature, error) {
	return UploadSignature{Folder: folder, Signature: "sig"}, nil
}

func (a *fakeAssets) Destroy(_ context.Context, publicID, resourceType string) error {
	a.destroyed = append(a.destroyed, destroyed{publicID, resourceType})
	return a.err
}

func exhibit() DocumentInput {
	return DocumentInput{
		FileName:     " contract.pdf ",
		URL:          "https://res.cloudinary.com/qv/raw/upload/contract.pdf",
		PublicID:     "quickverdicts/cases/contract",
		ContentType:  "application/pdf",
		Size:         2048,
		DocumentType: models.DocumentExhibit,
	}
}

func TestAddDocument(t *testing.T) {
	h := newHarness(t, Deps{})
	attorney := Actor{ID: primitive.NewObjectID(), Role: models.UserTypeAttorney}
	c := pendingCase(attorney.ID)
	h.c("cases").On("FindOne", mock.Anything, mock.Anything, mock.Anything).Return(found(c))
	var stored models.CaseDocument
	h.c("case_documents").On("InsertOne", mock.Anything, mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		stored = args.Get(1).(models.CaseDocument)
	}).Return(nil, nil)

	doc, err := h.svc.Documents.AddDocument(ctx, c.ID, attorney, exhibit())
	assert.NoError(t, err)
	assert.Equal(t, "contract.pdf", doc.FileName)
	assert.Equal(t, c.ID, stored.CaseID)
	assert.Equal(t, attorney.ID, stored.UploadedBy)
	assert.False(t, stored.IsDeleted)
	h.c("events").AssertNumberOfCalls(t, "InsertOne", 1)
}

func TestAddDocumentDefaultsType(t *testing.T) {
	h := newHarness(t, Deps{})
	admin := Actor{ID: primitive.NewObjectID(), Role: models.UserTypeAdmin}
	c := pendingCase(primitive.NewObjectID())
	h.c("cases").On("FindOne", mock.Anything, mock.Anything, mock.Anything).Return(found(c))
	h.c("case_documents").On("InsertOne", mock.Anything, mock.Anything, mock.Anything).Return(nil, nil)

	in := exhibit()
	in.DocumentType = ""
	doc, err := h.svc.Documents.AddDocument(ctx, c.ID, admin, in)
	assert.NoError(t, err)
	assert.Equal(t, models.DocumentOther, doc.DocumentType)
}

func TestAddDocumentValidates(t *testing.T) {
	h := newHarness(t, Deps{})

	_, err := h.svc.Documents.AddDocument(ctx, primitive.NewObjectID(), Actor{Role: models.UserTypeAdmin}, DocumentInput{URL: "not a url", Size: -1})
	var verr *ValidationError
	if assert.True(t, errors.As(err, &verr)) {
		assert.Contains(t, verr.Messages, "file name is required")
		assert.Contains(t, verr.Messages, "url must be a valid URL")
		assert.Contains(t, verr.Messages, "size cannot be negative")
	}
	h.c("case_documents").AssertNotCalled(t, "InsertOne", mock.Anything, mock.Anything, mock.Anything)
}

func TestAddDocumentOtherAttorney(t *testing.T) {
	h := newHarness(t, Deps{})
	c := pendingCase(primitive.NewObjectID())
	h.c("cases").On("FindOne", mock.Anything, mock.Anything, mock.Anything).Return(found(c))

	_, err := h.svc.Documents.AddDocument(ctx, c.ID, Actor{ID: primitive.NewObjectID(), Role: models.UserTypeAttorney}, exhibit())
	assert.True(t, errors.Is(err, ErrForbidden))
}

func TestListDocumentsSkipsDeleted(t *testing.T) {
	h := newHarness(t, Deps{})
	attorney := Actor{ID: primitive.NewObjectID(), Role: models.UserTypeAttorney}
	c := pendingCase(attorney.ID)
	h.c("cases").On("FindOne", mock.Anything, mock.Anything, mock.Anything).Return(found(c))
	h.c("case_documents").On("Find", mock.Anything, filterWith(func(f bson.M) bool {
		return f["caseId"] == c.ID && f["isDeleted"] == false
	}), mock.Anything).Return(cursorOf([]models.CaseDocument(nil)), nil)

	docs, err := h.svc.Documents.ListDocuments(ctx, c.ID, attorney)
	assert.NoError(t, err)
	assert.NotNil(t, docs)
	assert.Empty(t, docs)
}

func TestDeleteDocumentDestroysAsset(t *testing.T) {
	assets := &fakeAssets{}
	h := newHarness(t, Deps{Assets: assets})
	attorney := Actor{ID: primitive.NewObjectID(), Role: models.UserTypeAttorney}
	c := pendingCase(attorney.ID)
	doc := models.CaseDocument{ID: primitive.NewObjectID(), CaseID: c.ID, PublicID: "quickverdicts/cases/contract"}
	h.c("case_documents").On("FindOne", mock.Anything, mock.Anything, mock.Anything).Return(found(doc))
	h.c("cases").On("FindOne", mock.Anything, mock.Anything, mock.Anything).Return(found(c))
	var set bson.M
	h.c("case_documents").On("UpdateOne", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		set = args.Get(2).(bson.M)["$set"].(bson.M)
	}).Return(updated(1), nil)

	assert.NoError(t, h.svc.Documents.DeleteDocument(ctx, doc.ID, attorney))
	assert.Equal(t, true, set["isDeleted"])
	assert.Contains(t, set, "deletedAt")
	assert.Equal(t, []destroyed{{"quickverdicts/cases/contract", "raw"}}, assets.destroyed)
}

func TestDeleteDocumentAssetFailureIsLogged(t *testing.T) {
	assets := &fakeAssets{err: errors.New("cloudinary down")}
	h := newHarness(t, Deps{Assets: assets})
	admin := Actor{ID: primitive.NewObjectID(), Role: models.UserTypeAdmin}
	c := pendingCase(primitive.NewObjectID())
	doc := models.CaseDocument{ID: primitive.NewObjectID(), CaseID: c.ID, PublicID: "p1"}
	h.c("case_documents").On("FindOne", mock.Anything, mock.Anything, mock.Anything).Return(found(doc))
	h.c("cases").On("FindOne", mock.Anything, mock.Anything, mock.Anything).Return(found(c))
	h.c("case_documents").On("UpdateOne", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(updated(1), nil)

	assert.NoError(t, h.svc.Documents.DeleteDocument(ctx, doc.ID, admin))
	assert.Len(t, assets.destroyed, 1)
}

func TestDeleteDocumentMissing(t *testing.T) {
	assets := &fakeAssets{}
	h := newHarness(t, Deps{Assets: assets})
	h.c("case_documents").On("FindOne", mock.Anything, mock.Anything, mock.Anything).Return(missing())

	err := h.svc.Documents.DeleteDocument(ctx, primitive.NewObjectID(), Actor{Role: models.UserTypeAdmin})
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Empty(t, assets.destroyed)
}

func TestDeleteDocumentOtherAttorney(t *testing.T) {
	assets := &fakeAssets{}
	h := newHarness(t, Deps{Assets: assets})
	c := pendingCase(primitive.NewObjectID())
	doc := models.CaseDocument{ID: primitive.NewObjectID(), CaseID: c.ID, PublicID: "p1"}
	h.c("case_documents").On("FindOne", mock.Anything, mock.Anything, mock.Anything).Return(found(doc))
	h.c("cases").On("FindOne", mock.Anything, mock.Anything, mock.Anything).Return(found(c))

	err := h.svc.Documents.DeleteDocument(ctx, doc.ID, Actor{ID: primitive.NewObjectID(), Role: models.UserTypeAttorney})
	assert.True(t, errors.Is(err, ErrForbidden))
	h.c("case_documents").AssertNotCalled(t, "UpdateOne", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	assert.Empty(t, assets.destroyed)
}
