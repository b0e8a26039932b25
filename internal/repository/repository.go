package repository

// Repository 所有 Repository 的聚合入口
type Repository struct {
	Snapshot SnapshotRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(snapshot SnapshotRepository) *Repository {
	return &Repository{
		Snapshot: snapshot,
	}
}
