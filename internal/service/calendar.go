package service

import (
	"context"
	"fmt"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"
)

// ExportCalendar 导出全部报告期窗口为 iCalendar
// 每个报告期生成一个全天事件区间（开始日 → 结束日+1，DTEND 为排他日期），
// 供机构用户订阅填报窗口提醒
func (s *periodService) ExportCalendar(ctx context.Context) ([]byte, string, error) {
	periods, err := s.repo.Period.List(ctx)
	if err != nil {
		s.logger.Error("查询报告期列表失败", zap.Error(err))
		return nil, "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//agencyhub//reporting-periods//EN")
	cal.SetName("报告期日历")

	for i := range periods {
		p := &periods[i]

		evt := cal.AddEvent(fmt.Sprintf("period-%s@agencyhub", p.PeriodID))
		evt.SetSummary(fmt.Sprintf("%s 填报窗口", p.Label()))
		evt.SetDescription(fmt.Sprintf("报告期 %s（%s）", p.Label(), p.Status))
		evt.SetAllDayStartAt(p.StartDate)
		evt.SetAllDayEndAt(p.EndDate.AddDate(0, 0, 1))
		evt.SetDtStampTime(p.UpdatedAt)
	}

	return []byte(cal.Serialize()), "reporting-periods.ics", nil
}
