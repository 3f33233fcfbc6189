package app

import (
	"context"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shirou/gopsutil/mem"
	"github.com/shirou/gopsutil/process"
	"go.uber.org/zap"

	"github.com/riverhouse-belgrade/riverhouse/internal/store"
)

const jobTimeout = 2 * time.Minute

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// SystemStatus is the most recent host and process sample
type SystemStatus struct {
	ProcessRSSMB   uint64    `json:"processRssMb"`
	ProcessCPU     float64   `json:"processCpu"`
	MemTotalMB     uint64    `json:"memTotalMb"`
	MemUsedPercent float64   `json:"memUsedPercent"`
	StartedAt      time.Time `json:"startedAt"`
	SampledAt      time.Time `json:"sampledAt"`
}

var startedAt = time.Now()

func (a *Application) initJob() {
	loc, _ := time.LoadLocation(a.appConfig.System.Location)
	if loc == nil {
		loc = time.Local
	}
	a.sched = cron.New(cron.WithLocation(loc), cron.WithParser(cronParser))

	var err error
	_, err = a.sched.AddFunc("@every 30s", func() {
		go a.SchedSystemMonitorTask()
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	retrySpec := a.appConfig.Jobs.OutboxRetry
	if retrySpec == "" {
		retrySpec = "@every 5m"
	}
	_, err = a.sched.AddFunc(retrySpec, a.SchedOutboxRetryTask)
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	_, err = a.sched.AddFunc("@daily", a.SchedClearExpireData)
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	a.SchedSystemMonitorTask()
	a.sched.Start()
}

// SchedOutboxRetryTask re-delivers failed notification emails
func (a *Application) SchedOutboxRetryTask() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()
	if a.mailer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()
	if _, err := a.mailer.RetryFailed(ctx); err != nil {
		zap.L().Error("outbox retry failed", zap.Error(err))
	}
}

// SchedClearExpireData purges old operator log entries
func (a *Application) SchedClearExpireData() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()
	days := a.appConfig.Jobs.OprLogMaxDays
	if days <= 0 {
		days = 365
	}
	n, err := store.NewOperatorStore(a.gormDB).PurgeLogs(context.Background(), days)
	if err != nil {
		zap.L().Error("operator log purge failed", zap.Error(err))
		return
	}
	if n > 0 {
		zap.L().Info("purged operator log", zap.Int64("rows", n))
	}
}

// SchedSystemMonitorTask samples process and host memory usage
func (a *Application) SchedSystemMonitorTask() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	st := SystemStatus{StartedAt: startedAt, SampledAt: time.Now()}

	if vm, err := mem.VirtualMemory(); err == nil {
		st.MemTotalMB = vm.Total / 1024 / 1024
		st.MemUsedPercent = vm.UsedPercent
	}

	p, err := process.NewProcess(int32(os.Getpid())) //nolint:gosec // G115: PID is always within int32 range
	if err == nil {
		if cpuuse, err := p.CPUPercent(); err == nil {
			st.ProcessCPU = cpuuse
		}
		if meminfo, err := p.MemoryInfo(); err == nil {
			st.ProcessRSSMB = meminfo.RSS / 1024 / 1024
		}
	}

	a.statusMu.Lock()
	a.status = st
	a.statusMu.Unlock()
}

// SystemStatus returns the last sample taken by the monitor job
func (a *Application) SystemStatus() SystemStatus {
	a.statusMu.RLock()
	defer a.statusMu.RUnlock()
	return a.status
}
