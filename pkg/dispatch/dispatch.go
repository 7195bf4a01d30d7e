package dispatch

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Task 异步任务：name 用于日志定位，fn 的错误只记录不传播
type Task struct {
	Name string
	Fn   func(ctx context.Context) error
}

// Dispatcher 尽力而为的异步任务派发器
// 用于主事务提交后的通知类副作用：Submit 永不阻塞请求路径，
// 队列满或任务失败只记日志，不影响主操作结果
type Dispatcher struct {
	queue   chan Task
	logger  *zap.Logger
	timeout time.Duration

	wg      sync.WaitGroup
	closeMu sync.Mutex
	closed  bool
}

// New 创建派发器并启动 worker 协程
// queueSize <= 0 时取 256，workers <= 0 时取 1
func New(queueSize, workers int, logger *zap.Logger) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 256
	}
	if workers <= 0 {
		workers = 1
	}

	d := &Dispatcher{
		queue:   make(chan Task, queueSize),
		logger:  logger,
		timeout: 10 * time.Second,
	}

	d.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go d.worker()
	}

	return d
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for task := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		if err := task.Fn(ctx); err != nil {
			d.logger.Warn("异步任务执行失败",
				zap.String("task", task.Name),
				zap.Error(err),
			)
		}
		cancel()
	}
}

// Submit 投递任务；队列满或派发器已关闭时丢弃并记录警告
func (d *Dispatcher) Submit(task Task) {
	d.closeMu.Lock()
	if d.closed {
		d.closeMu.Unlock()
		d.logger.Warn("派发器已关闭，任务被丢弃", zap.String("task", task.Name))
		return
	}

	select {
	case d.queue <- task:
		d.closeMu.Unlock()
	default:
		d.closeMu.Unlock()
		d.logger.Warn("异步队列已满，任务被丢弃", zap.String("task", task.Name))
	}
}

// Close 停止接收新任务并等待队列中的任务执行完毕
func (d *Dispatcher) Close() {
	d.closeMu.Lock()
	if d.closed {
		d.closeMu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.closeMu.Unlock()

	d.wg.Wait()
}
