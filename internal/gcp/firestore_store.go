package gcp

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/sitedesk/accessform/internal/models"
)

// Firestore caps "in" queries; id lookups are chunked defensively so large
// employee selections do not hit the limit.
const maxInQueryIDs = 30

// StoreConfig names the collections the pipeline reads and writes.
type StoreConfig struct {
	Projects    string
	Estates     string
	Employees   string
	CompanyInfo string
}

// Store is the Firestore-backed document store consumed by the access-form
// service. Point lookups return (nil, nil) for absent documents so the
// caller can attach its own precondition messages.
type Store struct {
	client *firestore.Client
	config StoreConfig
}

func NewStore(client *firestore.Client, config StoreConfig) *Store {
	return &Store{client: client, config: config}
}

func (s *Store) Project(ctx context.Context, id string) (*models.Project, error) {
	snap, err := s.client.Collection(s.config.Projects).Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load project %s: %w", id, err)
	}
	var p models.Project
	if err := snap.DataTo(&p); err != nil {
		return nil, fmt.Errorf("failed to decode project %s: %w", id, err)
	}
	return &p, nil
}

func (s *Store) Estate(ctx context.Context, id string) (*models.Estate, error) {
	snap, err := s.client.Collection(s.config.Estates).Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load estate %s: %w", id, err)
	}
	var e models.Estate
	if err := snap.DataTo(&e); err != nil {
		return nil, fmt.Errorf("failed to decode estate %s: %w", id, err)
	}
	return &e, nil
}

// CompanyInfo returns the tenant's singleton company record, or nil when
// none has been created yet.
func (s *Store) CompanyInfo(ctx context.Context) (*models.CompanyInfo, error) {
	snaps, err := s.client.Collection(s.config.CompanyInfo).Limit(1).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to load company info: %w", err)
	}
	if len(snaps) == 0 {
		return nil, nil
	}
	var ci models.CompanyInfo
	if err := snaps[0].DataTo(&ci); err != nil {
		return nil, fmt.Errorf("failed to decode company info: %w", err)
	}
	return &ci, nil
}

// EmployeesByID loads the requested employees, chunking the id list to stay
// under the "in" query cap. Results come back in request order; ids with no
// matching document are simply absent from the result.
func (s *Store) EmployeesByID(ctx context.Context, ids []string) ([]*models.Employee, error) {
	coll := s.client.Collection(s.config.Employees)
	byID := make(map[string]*models.Employee, len(ids))

	for start := 0; start < len(ids); start += maxInQueryIDs {
		end := start + maxInQueryIDs
		if end > len(ids) {
			end = len(ids)
		}
		refs := make([]*firestore.DocumentRef, 0, end-start)
		for _, id := range ids[start:end] {
			refs = append(refs, coll.Doc(id))
		}
		snaps, err := coll.Where(firestore.DocumentID, "in", refs).Documents(ctx).GetAll()
		if err != nil {
			return nil, fmt.Errorf("failed to query employees: %w", err)
		}
		for _, snap := range snaps {
			var e models.Employee
			if err := snap.DataTo(&e); err != nil {
				return nil, fmt.Errorf("failed to decode employee %s: %w", snap.Ref.ID, err)
			}
			e.ID = snap.Ref.ID
			byID[snap.Ref.ID] = &e
		}
	}

	employees := make([]*models.Employee, 0, len(byID))
	for _, id := range ids {
		if e, ok := byID[id]; ok {
			employees = append(employees, e)
		}
	}
	return employees, nil
}

// MarkRegistered adds the estate id to each employee's registeredEstateIds
// in one batched write. ArrayUnion gives the idempotent set semantics: a
// second run for the same estate changes nothing.
func (s *Store) MarkRegistered(ctx context.Context, employeeIDs []string, estateID string) error {
	bw := s.client.BulkWriter(ctx)
	jobs := make([]*firestore.BulkWriterJob, 0, len(employeeIDs))
	for _, id := range employeeIDs {
		ref := s.client.Collection(s.config.Employees).Doc(id)
		job, err := bw.Update(ref, []firestore.Update{
			{Path: "registeredEstateIds", Value: firestore.ArrayUnion(estateID)},
		})
		if err != nil {
			bw.End()
			return fmt.Errorf("failed to enqueue registration for employee %s: %w", id, err)
		}
		jobs = append(jobs, job)
	}
	bw.End()
	for i, job := range jobs {
		if _, err := job.Results(); err != nil {
			return fmt.Errorf("failed to register employee %s at estate: %w", employeeIDs[i], err)
		}
	}
	return nil
}
