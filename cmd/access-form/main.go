package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"cloud.google.com/go/storage"
	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	"github.com/GoogleCloudPlatform/functions-framework-go/funcframework"

	"github.com/sitedesk/accessform/internal/gcp"
	"github.com/sitedesk/accessform/internal/models"
	"github.com/sitedesk/accessform/internal/services"
)

var (
	accessFormInstance *services.AccessFormFunction
	once               sync.Once
	initErr            error
)

func init() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	functions.HTTP("FillAccessForm", fillAccessForm)
}

func main() {
	port := gcp.GetEnv("PORT", "8080")
	if err := funcframework.Start(port); err != nil {
		slog.Error("funcframework failed to start", "error", err)
		os.Exit(1)
	}
}

// fillAccessForm is the HTTP entry point. The calling app posts
// {projectId, employeeIds} and always gets a structured JSON result back;
// non-2xx codes are reserved for transport problems.
func fillAccessForm(w http.ResponseWriter, r *http.Request) {
	once.Do(func() {
		accessFormInstance, initErr = newAccessForm(context.Background())
	})
	if initErr != nil {
		slog.Error("Critical error during function initialization", "error", initErr)
		http.Error(w, "service initialization failed", http.StatusInternalServerError)
		return
	}

	var req models.FillAccessFormRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Failed to decode request body", "error", err)
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	resp := accessFormInstance.Process(r.Context(), &req)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func newAccessForm(ctx context.Context) (*services.AccessFormFunction, error) {
	projectID := gcp.GetEnv("GCP_PROJECT", "")
	if projectID == "" {
		return nil, fmt.Errorf("GCP_PROJECT environment variable must be set")
	}
	bucket := gcp.GetEnv("FORMS_BUCKET", "")
	if bucket == "" {
		return nil, fmt.Errorf("FORMS_BUCKET environment variable must be set")
	}

	firestoreClient, err := gcp.NewFirestoreClient(ctx, projectID)
	if err != nil {
		return nil, err
	}
	storageClient, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create Storage client: %w", err)
	}

	store := gcp.NewStore(firestoreClient, gcp.StoreConfig{
		Projects:    gcp.GetEnv("PROJECTS_COLLECTION", "projects"),
		Estates:     gcp.GetEnv("ESTATES_COLLECTION", "estates"),
		Employees:   gcp.GetEnv("EMPLOYEES_COLLECTION", "employees"),
		CompanyInfo: gcp.GetEnv("COMPANY_INFO_COLLECTION", "companyInfo"),
	})
	blob := gcp.NewBlobStore(storageClient, bucket)

	slog.Info("Access form service initialized.", "bucket", bucket)
	return services.NewAccessForm(store, blob, slog.Default()), nil
}
