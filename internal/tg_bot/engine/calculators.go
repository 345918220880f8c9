package engine

import (
	"github.com/DenisKhanov/SolarBot/internal/tg_bot/calc"
	"github.com/DenisKhanov/SolarBot/internal/tg_bot/models"
)

func (e *Engine) onLoan(s *models.Session, ev models.Event) []models.Action {
	input, _ := inputText(ev)
	res, err := calc.ParseLoan(input)
	if err != nil {
		return []models.Action{e.reply(s, "loan_badfmt", nil, models.KeyboardBackOnly)}
	}
	s.Reset()
	reply := e.reply(s, "loan_result", map[string]string{
		"monthly": calc.Money(res.MonthlyPayment),
		"total":   calc.Money(res.Total),
		"over":    calc.Money(res.Overpayment),
	}, models.KeyboardMainMenu)
	return e.calculated(s, models.CalcLoan, input, reply)
}

func (e *Engine) onSolar(s *models.Session, ev models.Event) []models.Action {
	input, _ := inputText(ev)
	res, err := e.opts.Solar.ParseSolar(input)
	if err != nil {
		return []models.Action{e.reply(s, "solar_badfmt", nil, models.KeyboardBackOnly)}
	}
	s.Reset()
	reply := e.reply(s, "solar_result", map[string]string{
		"kw":          calc.Number(res.KW),
		"cost":        calc.Money(res.Cost),
		"gen":         calc.Number(res.YearlyGeneration),
		"save":        calc.Money(res.YearlySavings),
		"payback":     calc.Number(res.PaybackYears),
		"cost_per_kw": calc.Number(e.opts.Solar.CostPerKW),
	}, models.KeyboardMainMenu)
	return e.calculated(s, models.CalcSolar, input, reply)
}

// calculated emits the result reply followed by the logging actions of a run.
func (e *Engine) calculated(s *models.Session, typ models.CalcType, input string, reply models.Reply) []models.Action {
	c := models.Calculation{
		ChatID:    s.ChatID,
		Username:  s.Username,
		Language:  s.Language,
		Type:      typ,
		Input:     input,
		Result:    reply.Text,
		CreatedAt: e.opts.Now().UTC(),
	}
	actions := []models.Action{reply, models.PersistCalculation{Calculation: c}}
	if e.opts.SheetLogCalculations {
		actions = append(actions, models.AppendSheetRow{Fields: c.SheetRow()})
	}
	return actions
}
