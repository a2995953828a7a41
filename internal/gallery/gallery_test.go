package gallery

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kozaktomas/photo-faces/internal/database"
	"github.com/kozaktomas/photo-faces/internal/database/mock"
)

func row(id int64, path string, cluster int) database.ClusteredFace {
	return database.ClusteredFace{
		FaceRecord: database.FaceRecord{FaceID: id, ImagePath: path, Embedding: []float32{float32(id)}},
		ClusterID:  cluster,
	}
}

func testResult() *database.ClusteringResult {
	return &database.ClusteringResult{
		RunID:     "run-2",
		Epsilon:   0.4,
		MinPoints: 2,
		Rows: []database.ClusteredFace{
			row(0, "/photos/a.jpg", 3),
			row(1, "/photos/b.jpg", 0),
			row(2, "/photos/a.jpg", 3),
			row(3, "/photos/c.jpg", -1),
			row(4, "/photos/2021/d.jpg", 0),
			row(5, "/photos/2021/e.jpg", 3),
		},
	}
}

func newTestService(result *database.ClusteringResult) (*Service, *mock.MockNameStore) {
	names := mock.NewMockNameStore()
	svc := NewService(mock.NewMockClusterReader(result), names)
	svc.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return svc, names
}

func TestListClusters(t *testing.T) {
	svc, _ := newTestService(testResult())

	summaries, err := svc.ListClusters(context.Background(), "")
	if err != nil {
		t.Fatalf("ListClusters failed: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("got %d clusters, want 2", len(summaries))
	}

	want := []ClusterSummary{
		{ClusterID: 0, Name: "Person 1", FaceCount: 2, RepresentativeImage: "/photos/b.jpg"},
		{ClusterID: 3, Name: "Person 4", FaceCount: 3, RepresentativeImage: "/photos/a.jpg"},
	}
	for i := range want {
		if summaries[i] != want[i] {
			t.Errorf("summaries[%d] = %+v, want %+v", i, summaries[i], want[i])
		}
	}
}

func TestNameCluster_Upsert(t *testing.T) {
	svc, names := newTestService(testResult())
	ctx := context.Background()

	if _, err := svc.NameCluster(ctx, 3, "Alice"); err != nil {
		t.Fatalf("NameCluster failed: %v", err)
	}
	summaries, err := svc.ListClusters(ctx, "")
	if err != nil {
		t.Fatalf("ListClusters failed: %v", err)
	}
	if summaries[1].Name != "Alice" || !summaries[1].Named {
		t.Errorf("cluster 3 = %+v, want named Alice", summaries[1])
	}

	record, err := svc.NameCluster(ctx, 3, "  Alicia ")
	if err != nil {
		t.Fatalf("NameCluster (overwrite) failed: %v", err)
	}
	if record.Name != "Alicia" || record.RunID != "run-2" {
		t.Errorf("record = %+v, want Alicia recorded against run-2", record)
	}
	if names.Count() != 1 {
		t.Errorf("name store has %d entries, want 1", names.Count())
	}

	detail, err := svc.Cluster(ctx, 3)
	if err != nil {
		t.Fatalf("Cluster failed: %v", err)
	}
	if detail.Name != "Alicia" || detail.Stale {
		t.Errorf("detail = %+v, want fresh Alicia", detail)
	}
}

func TestNameCluster_Invalid(t *testing.T) {
	svc, names := newTestService(testResult())
	ctx := context.Background()

	tests := []struct {
		name      string
		clusterID int
		value     string
		wantErr   error
	}{
		{"empty name", 0, "   ", ErrInvalidName},
		{"negative id", -1, "Bob", ErrInvalidClusterID},
		{"unknown cluster", 42, "Bob", database.ErrClusterNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.NameCluster(ctx, tt.clusterID, tt.value)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("NameCluster(%d, %q) error = %v, want %v", tt.clusterID, tt.value, err, tt.wantErr)
			}
		})
	}
	if names.Count() != 0 {
		t.Errorf("invalid requests must not write names, got %d", names.Count())
	}
}

func TestListClusters_StaleAndQuery(t *testing.T) {
	svc, names := newTestService(testResult())
	names.AddName(database.ClusterName{ClusterID: 0, Name: "Jiří Novák", RunID: "run-1"})
	names.AddName(database.ClusterName{ClusterID: 3, Name: "Anna", RunID: "run-2"})

	summaries, err := svc.ListClusters(context.Background(), "jiri")
	if err != nil {
		t.Fatalf("ListClusters failed: %v", err)
	}
	if len(summaries) != 1 || summaries[0].ClusterID != 0 {
		t.Fatalf("query matched %+v, want only cluster 0", summaries)
	}
	if !summaries[0].Stale {
		t.Error("name given against run-1 should be stale")
	}

	summaries, err = svc.ListClusters(context.Background(), "person")
	if err != nil {
		t.Fatalf("ListClusters failed: %v", err)
	}
	if len(summaries) != 0 {
		t.Errorf("all clusters are named, query %q matched %+v", "person", summaries)
	}
}

func TestClusterImages(t *testing.T) {
	svc, _ := newTestService(testResult())
	ctx := context.Background()

	images, err := svc.ClusterImages(ctx, 3)
	if err != nil {
		t.Fatalf("ClusterImages failed: %v", err)
	}
	want := []string{"/photos/a.jpg", "/photos/2021/e.jpg"}
	if len(images) != len(want) {
		t.Fatalf("ClusterImages(3) = %v, want %v", images, want)
	}
	for i := range want {
		if images[i] != want[i] {
			t.Errorf("images[%d] = %q, want %q", i, images[i], want[i])
		}
	}

	for _, id := range []int{-1, 1, 99} {
		if _, err := svc.ClusterImages(ctx, id); !errors.Is(err, database.ErrClusterNotFound) {
			t.Errorf("ClusterImages(%d) error = %v, want ErrClusterNotFound", id, err)
		}
	}
}

func TestService_NoClusteringResult(t *testing.T) {
	svc, _ := newTestService(nil)
	ctx := context.Background()

	if _, err := svc.ListClusters(ctx, ""); !errors.Is(err, database.ErrNoClusteringResult) {
		t.Errorf("ListClusters error = %v, want ErrNoClusteringResult", err)
	}
	if _, err := svc.ClusterImages(ctx, 0); !errors.Is(err, database.ErrNoClusteringResult) {
		t.Errorf("ClusterImages error = %v, want ErrNoClusteringResult", err)
	}
	if _, err := svc.NameCluster(ctx, 0, "Alice"); !errors.Is(err, database.ErrNoClusteringResult) {
		t.Errorf("NameCluster error = %v, want ErrNoClusteringResult", err)
	}
	if _, err := svc.ImageRoot(ctx); !errors.Is(err, database.ErrNoClusteringResult) {
		t.Errorf("ImageRoot error = %v, want ErrNoClusteringResult", err)
	}
}

func TestImageRoot(t *testing.T) {
	svc, _ := newTestService(testResult())
	root, err := svc.ImageRoot(context.Background())
	if err != nil {
		t.Fatalf("ImageRoot failed: %v", err)
	}
	if root != "/photos" {
		t.Errorf("ImageRoot() = %q, want /photos", root)
	}
}

func TestImageRoot_EmptyResult(t *testing.T) {
	svc, _ := newTestService(&database.ClusteringResult{RunID: "run-empty"})
	root, err := svc.ImageRoot(context.Background())
	if !errors.Is(err, database.ErrNoClusteringResult) {
		t.Errorf("ImageRoot error = %v, want ErrNoClusteringResult", err)
	}
	if root != "" {
		t.Errorf("ImageRoot() = %q, want empty", root)
	}
}

func TestNameStoreErrorsPropagate(t *testing.T) {
	svc, names := newTestService(testResult())
	names.ListError = errors.New("db down")

	if _, err := svc.ListClusters(context.Background(), ""); err == nil {
		t.Error("expected ListClusters to fail when the name store fails")
	}
}
