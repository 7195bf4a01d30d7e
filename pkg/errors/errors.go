package errors

import "errors"

// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
var ErrOptimisticLock = errors.New("数据已被其他操作修改，请刷新后重试")

// ErrOpenSessionConflict 唯一索引冲突：同一员工已存在未签退的考勤记录
// 由部分唯一索引 (owner_id WHERE check_out_time IS NULL) 在并发签到时兜底触发
var ErrOpenSessionConflict = errors.New("已存在进行中的考勤记录")
