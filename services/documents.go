package services

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/RupeshSangoju/quickverdicts-sub001/databases"
	"github.com/RupeshSangoju/quickverdicts-sub001/models"
)

// DocumentService keeps metadata for files attached to a case
type DocumentService struct {
	DB     databases.DocumentDatabase
	Cases  databases.CaseDatabase
	Assets AssetStore
	Events *EventService
}

// DocumentInput describes a file the client already uploaded to the asset store
type DocumentInput struct {
	FileName     string `json:"fileName" validate:"required"`
	URL          string `json:"url" validate:"required,url"`
	PublicID     string `json:"publicId" validate:"required"`
	ContentType  string `json:"contentType"`
	Size         int64  `json:"size" validate:"gte=0"`
	DocumentType string `json:"documentType" validate:"omitempty,oneof=exhibit brief evidence other"`
}

var documentMessages = map[string]string{
	"FileName":     "file name is required",
	"URL":          "url must be a valid URL",
	"PublicID":     "public id is required",
	"Size":         "size cannot be negative",
	"DocumentType": "document type must be exhibit, brief, evidence or other",
}

func (s *DocumentService) ownedCase(ctx context.Context, caseID primitive.ObjectID, actor Actor) (*models.Case, error) {
	c, err := s.Cases.FindOne(ctx, bson.M{"_id": caseID, "isDeleted": false})
	if err != nil {
		return nil, lookup(err, "case")
	}
	if !actor.IsAdmin() && !(actor.Role == models.UserTypeAttorney && c.AttorneyID == actor.ID) {
		return nil, forbidden("case belongs to another attorney")
	}
	return c, nil
}

// UploadSignature signs a direct upload into the case's asset folder
func (s *DocumentService) UploadSignature(ctx context.Context, caseID primitive.ObjectID, actor Actor) (UploadSignature, error) {
	if _, err := s.ownedCase(ctx, caseID, actor); err != nil {
		return UploadSignature{}, err
	}
	if s.Assets == nil {
		return UploadSignature{}, errors.New("asset store is not configured")
	}
	sig, err := s.Assets.SignUpload("quickverdicts/cases/" + caseID.Hex())
	return sig, errors.Wrap(err, "failed to sign upload")
}

// AddDocument attaches an uploaded file to a case
func (s *DocumentService) AddDocument(ctx context.Context, caseID primitive.ObjectID, actor Actor, in DocumentInput) (*models.CaseDocument, error) {
	in.FileName = strings.TrimSpace(in.FileName)
	if msgs := validationMessages(in, documentMessages); len(msgs) > 0 {
		return nil, invalid(msgs...)
	}
	if _, err := s.ownedCase(ctx, caseID, actor); err != nil {
		return nil, err
	}
	if in.DocumentType == "" {
		in.DocumentType = models.DocumentOther
	}
	doc := models.CaseDocument{
		ID:           primitive.NewObjectID(),
		CaseID:       caseID,
		UploadedBy:   actor.ID,
		FileName:     in.FileName,
		URL:          in.URL,
		PublicID:     in.PublicID,
		ContentType:  in.ContentType,
		Size:         in.Size,
		DocumentType: in.DocumentType,
		CreatedAt:    now(),
	}
	if _, err := s.DB.InsertOne(ctx, doc); err != nil {
		return nil, errors.Wrap(err, "failed to insert document")
	}
	s.Events.Record(ctx, caseID, models.EventDocumentAdded, doc.FileName+" added", &actor,
		map[string]interface{}{"documentId": doc.ID.Hex(), "documentType": doc.DocumentType})
	return &doc, nil
}

// ListDocuments lists the case's documents that were not deleted
func (s *DocumentService) ListDocuments(ctx context.Context, caseID primitive.ObjectID, actor Actor) ([]models.CaseDocument, error) {
	if _, err := s.ownedCase(ctx, caseID, actor); err != nil {
		return nil, err
	}
	docs, err := s.DB.Find(ctx, bson.M{"caseId": caseID, "isDeleted": false})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list documents")
	}
	return nonNil(docs), nil
}

// DeleteDocument soft deletes the record and destroys the stored asset
func (s *DocumentService) DeleteDocument(ctx context.Context, docID primitive.ObjectID, actor Actor) error {
	doc, err := s.DB.FindOne(ctx, bson.M{"_id": docID, "isDeleted": false})
	if err != nil {
		return lookup(err, "document")
	}
	if _, err := s.ownedCase(ctx, doc.CaseID, actor); err != nil {
		return err
	}
	res, err := s.DB.UpdateOne(ctx,
		bson.M{"_id": doc.ID, "isDeleted": false},
		bson.M{"$set": bson.M{"isDeleted": true, "deletedAt": now()}},
	)
	if err != nil {
		return errors.Wrap(err, "failed to delete document")
	}
	if res.MatchedCount == 0 {
		return notFound("document")
	}
	if s.Assets != nil && doc.PublicID != "" {
		if err := s.Assets.Destroy(ctx, doc.PublicID, "raw"); err != nil {
			zap.S().Errorw("failed to destroy document asset", "documentId", doc.ID.Hex(), "publicId", doc.PublicID, "error", err)
		}
	}
	return nil
}
