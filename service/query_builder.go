package service

import (
	"fmt"
	"strconv"
	"strings"

	"studiotributario-backend/models"
)

const jurisprudencePortal = "bancadatigiurisprudenza.giustiziatributaria.gov.it"

// SearchSystemPrompt opens every sequential search conversation
const SearchSystemPrompt = "Sei un assistente legale esperto di contenzioso tributario che consulta il portale " +
	jurisprudencePortal + ". Esegui le ricerche richieste passo per passo, applicando i filtri " +
	"indicati ai risultati del passo precedente, e riporta i risultati in modo fedele senza inventare estremi."

// StepInstruction is the natural-language instruction for one refinement step
type StepInstruction struct {
	Step  int             `json:"step"`
	Kind  models.StepKind `json:"kind"`
	Label string          `json:"label"`
	Text  string          `json:"text"`
}

type criterion struct {
	name  string
	value string
}

func joinCriteria(cs []criterion, sep string) string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = fmt.Sprintf("%s='%s'", c.name, c.value)
	}
	return strings.Join(parts, sep)
}

func yesNo(b bool) string {
	if b {
		return "Sì"
	}
	return "No"
}

// typeYearCriteria returns the active filters of the document type / period phase
func typeYearCriteria(f models.SearchFilters) []criterion {
	var cs []criterion
	if f.DocumentType != "" && f.DocumentType != models.DocumentTypeAny {
		cs = append(cs, criterion{"Tipo Atto", f.DocumentType.Label()})
	}
	if f.Year != nil {
		cs = append(cs, criterion{"Anno", strconv.Itoa(*f.Year)})
	}
	if f.DateFrom != nil {
		cs = append(cs, criterion{"Data dal", f.DateFrom.Italian()})
	}
	if f.DateTo != nil {
		cs = append(cs, criterion{"Data al", f.DateTo.Italian()})
	}
	return cs
}

// advancedCriteria returns the active filters of the court / outcome phase
func advancedCriteria(f models.SearchFilters) []criterion {
	var cs []criterion
	if f.CourtLevel != "" && f.CourtLevel != models.CourtLevelAny {
		cs = append(cs, criterion{"Grado", f.CourtLevel.Label()})
	}
	if f.Venue != "" {
		name := "Regione"
		if f.CourtLevel == models.CourtLevelFirstInstance {
			name = "Sede"
		}
		cs = append(cs, criterion{name, f.Venue})
	}
	if f.Outcome != "" && f.Outcome != models.OutcomeAny {
		cs = append(cs, criterion{"Esito", f.Outcome.Label()})
	}
	if f.Appeal != nil {
		cs = append(cs, criterion{"Appellata", yesNo(*f.Appeal)})
	}
	if f.Cassation != nil {
		cs = append(cs, criterion{"Ricorso in Cassazione", yesNo(*f.Cassation)})
	}
	if f.CostAllocation != "" && f.CostAllocation != models.CostAllocationAny {
		cs = append(cs, criterion{"Spese", f.CostAllocation.Label()})
	}
	return cs
}

// BuildStep produces the instruction for one phase of the sequence. It reports
// false when every filter relevant to the phase is unspecified, in which case the
// step must be skipped.
func BuildStep(f models.SearchFilters, kind models.StepKind) (StepInstruction, bool) {
	keywords := strings.TrimSpace(f.Keywords)
	if keywords == "" {
		return StepInstruction{}, false
	}

	switch kind {
	case models.StepBase:
		return StepInstruction{
			Kind:  kind,
			Label: fmt.Sprintf("Ricerca base: parole chiave \"%s\"", keywords),
			Text: fmt.Sprintf("Vai sul portale %s. Inserisci le parole chiave '%s' e avvia la ricerca. "+
				"Riporta il numero esatto indicato accanto a 'Risultati di ricerca' e gli estremi dei primi documenti trovati.",
				jurisprudencePortal, keywords),
		}, true

	case models.StepTypeYear:
		cs := typeYearCriteria(f)
		if len(cs) == 0 {
			return StepInstruction{}, false
		}
		return StepInstruction{
			Kind:  kind,
			Label: "Tipo atto e periodo: " + joinCriteria(cs, ", "),
			Text: fmt.Sprintf("Restringi i risultati della ricerca precedente mantenendo le stesse parole chiave. "+
				"Imposta %s e avvia di nuovo la ricerca. Riporta il numero aggiornato di documenti trovati.",
				joinCriteria(cs, " e ")),
		}, true

	case models.StepAdvanced:
		cs := advancedCriteria(f)
		if len(cs) == 0 {
			return StepInstruction{}, false
		}
		return StepInstruction{
			Kind:  kind,
			Label: "Filtri avanzati: " + joinCriteria(cs, ", "),
			Text: fmt.Sprintf("Restringi ulteriormente i risultati ottenuti finora. Imposta %s. "+
				"Quanti documenti rimangono? Riporta il numero e gli estremi di quelli rimasti.",
				joinCriteria(cs, " e ")),
		}, true

	case models.StepMaxims:
		return StepInstruction{
			Kind:  kind,
			Label: "Estrazione massime",
			Text: fmt.Sprintf("Apri le anteprime dei documenti rimasti (al massimo i 5 più rilevanti) e analizzali. "+
				"Per ciascuno riporta gli estremi e la ratio decidendi, indicando se è utile per una difesa basata su '%s'.",
				keywords),
		}, true
	}

	return StepInstruction{}, false
}

// PlanSteps returns the steps to execute, in order, for the given filters.
// Blank keywords suppress the whole sequence.
func PlanSteps(f models.SearchFilters, withMaxims bool) []StepInstruction {
	kinds := []models.StepKind{models.StepBase, models.StepTypeYear, models.StepAdvanced}
	if withMaxims {
		kinds = append(kinds, models.StepMaxims)
	}

	var steps []StepInstruction
	for _, kind := range kinds {
		instr, ok := BuildStep(f, kind)
		if !ok {
			if kind == models.StepBase {
				return nil
			}
			continue
		}
		instr.Step = len(steps) + 1
		steps = append(steps, instr)
	}
	return steps
}
