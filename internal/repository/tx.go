package repository

import (
	"fmt"
	"slices"
	"strings"

	"github.com/evalex7/e-plan/internal/model"
)

type entity interface {
	EntityID() string
}

func indexOf[T entity](items []T, id string) int {
	for i := range items {
		if items[i].EntityID() == id {
			return i
		}
	}
	return -1
}

// Tx is the CRUD surface over one transaction's working copy. Reads return
// copies; writes validate at this boundary before touching the copy.
type Tx struct {
	state    *model.Dataset
	newID    func() string
	touched  map[model.Collection]struct{}
	readOnly bool
}

func (tx *Tx) touch(collections ...model.Collection) error {
	if tx.readOnly {
		return fmt.Errorf("%w: read-only view", ErrConflict)
	}
	for _, c := range collections {
		tx.touched[c] = struct{}{}
	}
	return nil
}

func (tx *Tx) ensureID(id string) string {
	if id = strings.TrimSpace(id); id != "" {
		return id
	}
	return tx.newID()
}

// Dataset returns a deep copy of the working state.
func (tx *Tx) Dataset() model.Dataset {
	return tx.state.Clone()
}

// ---- contracts

func (tx *Tx) Contracts() []model.Contract {
	out := make([]model.Contract, len(tx.state.Contracts))
	for i, c := range tx.state.Contracts {
		out[i] = model.CloneContract(c)
	}
	return out
}

func (tx *Tx) Contract(id string) (model.Contract, error) {
	i := indexOf(tx.state.Contracts, id)
	if i < 0 {
		return model.Contract{}, fmt.Errorf("%w: contract %s", ErrNotFound, id)
	}
	return model.CloneContract(tx.state.Contracts[i]), nil
}

func (tx *Tx) CreateContract(c model.Contract) (model.Contract, error) {
	if err := tx.touch(model.CollectionContracts); err != nil {
		return model.Contract{}, err
	}
	c = model.CloneContract(c)
	c.ID = tx.ensureID(c.ID)
	if indexOf(tx.state.Contracts, c.ID) >= 0 {
		return model.Contract{}, fmt.Errorf("%w: contract %s already exists", ErrConflict, c.ID)
	}
	if err := validateContract(&c, tx.newID); err != nil {
		return model.Contract{}, err
	}
	if err := tx.checkContractRefs(c, nil); err != nil {
		return model.Contract{}, err
	}
	tx.state.Contracts = append(tx.state.Contracts, c)
	return model.CloneContract(c), nil
}

// UpdateContract applies mutate to a copy of the contract and stores the
// result if it still validates.
func (tx *Tx) UpdateContract(id string, mutate func(c *model.Contract) error) (model.Contract, error) {
	if err := tx.touch(model.CollectionContracts); err != nil {
		return model.Contract{}, err
	}
	i := indexOf(tx.state.Contracts, id)
	if i < 0 {
		return model.Contract{}, fmt.Errorf("%w: contract %s", ErrNotFound, id)
	}
	previous := tx.state.Contracts[i]
	next := model.CloneContract(previous)
	if err := mutate(&next); err != nil {
		return model.Contract{}, err
	}
	next.ID = previous.ID
	if err := validateContract(&next, tx.newID); err != nil {
		return model.Contract{}, err
	}
	if err := tx.checkContractRefs(next, &previous); err != nil {
		return model.Contract{}, err
	}
	tx.state.Contracts[i] = next
	return model.CloneContract(next), nil
}

// DeleteContract removes the contract together with its tasks and board cards.
func (tx *Tx) DeleteContract(id string) error {
	if err := tx.touch(model.CollectionContracts, model.CollectionTasks,
		model.CollectionKanbanTasks, model.CollectionContractKanbanTasks); err != nil {
		return err
	}
	i := indexOf(tx.state.Contracts, id)
	if i < 0 {
		return fmt.Errorf("%w: contract %s", ErrNotFound, id)
	}
	tx.state.Contracts = slices.Delete(tx.state.Contracts, i, i+1)

	removed := make(map[string]struct{})
	tx.state.Tasks = slices.DeleteFunc(tx.state.Tasks, func(t model.MaintenanceTask) bool {
		if t.ContractID == id {
			removed[t.ID] = struct{}{}
			return true
		}
		return false
	})
	tx.state.KanbanTasks = slices.DeleteFunc(tx.state.KanbanTasks, func(k model.KanbanTask) bool {
		_, ok := removed[k.TaskID]
		return ok
	})
	tx.state.ContractKanbanTasks = slices.DeleteFunc(tx.state.ContractKanbanTasks, func(k model.ContractKanbanTask) bool {
		return k.ContractID == id
	})
	return nil
}

func (tx *Tx) checkContractRefs(c model.Contract, previous *model.Contract) error {
	for _, other := range tx.state.Contracts {
		if other.ID != c.ID && other.ContractNumber == c.ContractNumber {
			return fmt.Errorf("%w: contract number %s is already used", ErrConflict, c.ContractNumber)
		}
	}
	if previous == nil || previous.ObjectID != c.ObjectID {
		if indexOf(tx.state.Objects, c.ObjectID) < 0 {
			return fmt.Errorf("%w: object %s", ErrNotFound, c.ObjectID)
		}
	}
	for _, engineerID := range c.AssignedEngineerIDs {
		if previous != nil && previous.HasEngineer(engineerID) {
			continue
		}
		if indexOf(tx.state.Engineers, engineerID) < 0 {
			return fmt.Errorf("%w: engineer %s", ErrNotFound, engineerID)
		}
	}
	return nil
}

// ---- objects

func (tx *Tx) Objects() []model.ServiceObject {
	return slices.Clone(tx.state.Objects)
}

func (tx *Tx) Object(id string) (model.ServiceObject, error) {
	i := indexOf(tx.state.Objects, id)
	if i < 0 {
		return model.ServiceObject{}, fmt.Errorf("%w: object %s", ErrNotFound, id)
	}
	return tx.state.Objects[i], nil
}

func (tx *Tx) CreateObject(o model.ServiceObject) (model.ServiceObject, error) {
	if err := tx.touch(model.CollectionObjects); err != nil {
		return model.ServiceObject{}, err
	}
	o.ID = tx.ensureID(o.ID)
	if indexOf(tx.state.Objects, o.ID) >= 0 {
		return model.ServiceObject{}, fmt.Errorf("%w: object %s already exists", ErrConflict, o.ID)
	}
	if err := validateObject(&o); err != nil {
		return model.ServiceObject{}, err
	}
	tx.state.Objects = append(tx.state.Objects, o)
	return o, nil
}

func (tx *Tx) UpdateObject(id string, mutate func(o *model.ServiceObject) error) (model.ServiceObject, error) {
	if err := tx.touch(model.CollectionObjects); err != nil {
		return model.ServiceObject{}, err
	}
	i := indexOf(tx.state.Objects, id)
	if i < 0 {
		return model.ServiceObject{}, fmt.Errorf("%w: object %s", ErrNotFound, id)
	}
	next := tx.state.Objects[i]
	if err := mutate(&next); err != nil {
		return model.ServiceObject{}, err
	}
	next.ID = id
	if err := validateObject(&next); err != nil {
		return model.ServiceObject{}, err
	}
	tx.state.Objects[i] = next
	return next, nil
}

// DeleteObject fails with ErrConflict while a non-archived contract covers the object.
func (tx *Tx) DeleteObject(id string) error {
	if err := tx.touch(model.CollectionObjects); err != nil {
		return err
	}
	i := indexOf(tx.state.Objects, id)
	if i < 0 {
		return fmt.Errorf("%w: object %s", ErrNotFound, id)
	}
	for _, c := range tx.state.Contracts {
		if c.ObjectID == id && !c.IsArchived() {
			return fmt.Errorf("%w: object %s is used by contract №%s", ErrConflict, id, c.ContractNumber)
		}
	}
	tx.state.Objects = slices.Delete(tx.state.Objects, i, i+1)
	return nil
}

// ---- engineers

func (tx *Tx) Engineers() []model.ServiceEngineer {
	out := make([]model.ServiceEngineer, len(tx.state.Engineers))
	for i, e := range tx.state.Engineers {
		out[i] = model.CloneEngineer(e)
	}
	return out
}

func (tx *Tx) Engineer(id string) (model.ServiceEngineer, error) {
	i := indexOf(tx.state.Engineers, id)
	if i < 0 {
		return model.ServiceEngineer{}, fmt.Errorf("%w: engineer %s", ErrNotFound, id)
	}
	return model.CloneEngineer(tx.state.Engineers[i]), nil
}

func (tx *Tx) CreateEngineer(e model.ServiceEngineer) (model.ServiceEngineer, error) {
	if err := tx.touch(model.CollectionEngineers); err != nil {
		return model.ServiceEngineer{}, err
	}
	e = model.CloneEngineer(e)
	e.ID = tx.ensureID(e.ID)
	if indexOf(tx.state.Engineers, e.ID) >= 0 {
		return model.ServiceEngineer{}, fmt.Errorf("%w: engineer %s already exists", ErrConflict, e.ID)
	}
	if err := validateEngineer(&e); err != nil {
		return model.ServiceEngineer{}, err
	}
	tx.state.Engineers = append(tx.state.Engineers, e)
	return model.CloneEngineer(e), nil
}

func (tx *Tx) UpdateEngineer(id string, mutate func(e *model.ServiceEngineer) error) (model.ServiceEngineer, error) {
	if err := tx.touch(model.CollectionEngineers); err != nil {
		return model.ServiceEngineer{}, err
	}
	i := indexOf(tx.state.Engineers, id)
	if i < 0 {
		return model.ServiceEngineer{}, fmt.Errorf("%w: engineer %s", ErrNotFound, id)
	}
	next := model.CloneEngineer(tx.state.Engineers[i])
	if err := mutate(&next); err != nil {
		return model.ServiceEngineer{}, err
	}
	next.ID = id
	if err := validateEngineer(&next); err != nil {
		return model.ServiceEngineer{}, err
	}
	tx.state.Engineers[i] = next
	return model.CloneEngineer(next), nil
}

// DeleteEngineer fails with ErrConflict while a non-archived contract assigns
// the engineer. Tasks handled by the engineer become unassigned.
func (tx *Tx) DeleteEngineer(id string) error {
	if err := tx.touch(model.CollectionEngineers, model.CollectionTasks); err != nil {
		return err
	}
	i := indexOf(tx.state.Engineers, id)
	if i < 0 {
		return fmt.Errorf("%w: engineer %s", ErrNotFound, id)
	}
	for _, c := range tx.state.Contracts {
		if !c.IsArchived() && c.HasEngineer(id) {
			return fmt.Errorf("%w: engineer %s is assigned to contract №%s", ErrConflict, id, c.ContractNumber)
		}
	}
	tx.state.Engineers = slices.Delete(tx.state.Engineers, i, i+1)
	for j := range tx.state.Tasks {
		if tx.state.Tasks[j].EngineerID == id {
			tx.state.Tasks[j].EngineerID = ""
		}
	}
	return nil
}

// ---- tasks

func (tx *Tx) Tasks() []model.MaintenanceTask {
	out := make([]model.MaintenanceTask, len(tx.state.Tasks))
	for i, t := range tx.state.Tasks {
		out[i] = model.CloneTask(t)
	}
	return out
}

func (tx *Tx) Task(id string) (model.MaintenanceTask, error) {
	i := indexOf(tx.state.Tasks, id)
	if i < 0 {
		return model.MaintenanceTask{}, fmt.Errorf("%w: task %s", ErrNotFound, id)
	}
	return model.CloneTask(tx.state.Tasks[i]), nil
}

func (tx *Tx) CreateTask(t model.MaintenanceTask) (model.MaintenanceTask, error) {
	if err := tx.touch(model.CollectionTasks); err != nil {
		return model.MaintenanceTask{}, err
	}
	t = model.CloneTask(t)
	t.ID = tx.ensureID(t.ID)
	if indexOf(tx.state.Tasks, t.ID) >= 0 {
		return model.MaintenanceTask{}, fmt.Errorf("%w: task %s already exists", ErrConflict, t.ID)
	}
	if err := tx.prepareTask(&t); err != nil {
		return model.MaintenanceTask{}, err
	}
	tx.state.Tasks = append(tx.state.Tasks, t)
	return model.CloneTask(t), nil
}

func (tx *Tx) UpdateTask(id string, mutate func(t *model.MaintenanceTask) error) (model.MaintenanceTask, error) {
	if err := tx.touch(model.CollectionTasks); err != nil {
		return model.MaintenanceTask{}, err
	}
	i := indexOf(tx.state.Tasks, id)
	if i < 0 {
		return model.MaintenanceTask{}, fmt.Errorf("%w: task %s", ErrNotFound, id)
	}
	previous := tx.state.Tasks[i]
	next := model.CloneTask(previous)
	if err := mutate(&next); err != nil {
		return model.MaintenanceTask{}, err
	}
	next.ID = id
	if next.EngineerID == previous.EngineerID && next.ContractID == previous.ContractID {
		// references were valid when stored
		if err := validateTask(&next); err != nil {
			return model.MaintenanceTask{}, err
		}
	} else if err := tx.prepareTask(&next); err != nil {
		return model.MaintenanceTask{}, err
	}
	tx.state.Tasks[i] = next
	return model.CloneTask(next), nil
}

// DeleteTask removes the task and its board card.
func (tx *Tx) DeleteTask(id string) error {
	if err := tx.touch(model.CollectionTasks, model.CollectionKanbanTasks); err != nil {
		return err
	}
	i := indexOf(tx.state.Tasks, id)
	if i < 0 {
		return fmt.Errorf("%w: task %s", ErrNotFound, id)
	}
	tx.state.Tasks = slices.Delete(tx.state.Tasks, i, i+1)
	tx.state.KanbanTasks = slices.DeleteFunc(tx.state.KanbanTasks, func(k model.KanbanTask) bool {
		return k.TaskID == id
	})
	return nil
}

func (tx *Tx) prepareTask(t *model.MaintenanceTask) error {
	if err := validateTask(t); err != nil {
		return err
	}
	ci := indexOf(tx.state.Contracts, t.ContractID)
	if ci < 0 {
		return fmt.Errorf("%w: contract %s", ErrNotFound, t.ContractID)
	}
	t.ObjectID = tx.state.Contracts[ci].ObjectID
	if t.EngineerID != "" && indexOf(tx.state.Engineers, t.EngineerID) < 0 {
		return fmt.Errorf("%w: engineer %s", ErrNotFound, t.EngineerID)
	}
	return nil
}

// ---- boards

func (tx *Tx) KanbanTasks() []model.KanbanTask {
	return slices.Clone(tx.state.KanbanTasks)
}

func (tx *Tx) SetKanbanTasks(cards []model.KanbanTask) error {
	if err := tx.touch(model.CollectionKanbanTasks); err != nil {
		return err
	}
	tx.state.KanbanTasks = slices.Clone(cards)
	return nil
}

func (tx *Tx) ContractKanbanTasks() []model.ContractKanbanTask {
	return slices.Clone(tx.state.ContractKanbanTasks)
}

func (tx *Tx) SetContractKanbanTasks(cards []model.ContractKanbanTask) error {
	if err := tx.touch(model.CollectionContractKanbanTasks); err != nil {
		return err
	}
	tx.state.ContractKanbanTasks = slices.Clone(cards)
	return nil
}

// ---- reports

func (tx *Tx) Reports() []model.MaintenanceReport {
	out := make([]model.MaintenanceReport, len(tx.state.Reports))
	for i, r := range tx.state.Reports {
		out[i] = model.CloneReport(r)
	}
	return out
}

func (tx *Tx) Report(id string) (model.MaintenanceReport, error) {
	i := indexOf(tx.state.Reports, id)
	if i < 0 {
		return model.MaintenanceReport{}, fmt.Errorf("%w: report %s", ErrNotFound, id)
	}
	return model.CloneReport(tx.state.Reports[i]), nil
}

func (tx *Tx) CreateReport(r model.MaintenanceReport) (model.MaintenanceReport, error) {
	if err := tx.touch(model.CollectionReports); err != nil {
		return model.MaintenanceReport{}, err
	}
	r = model.CloneReport(r)
	r.ID = tx.ensureID(r.ID)
	if indexOf(tx.state.Reports, r.ID) >= 0 {
		return model.MaintenanceReport{}, fmt.Errorf("%w: report %s already exists", ErrConflict, r.ID)
	}
	if err := tx.prepareReport(&r); err != nil {
		return model.MaintenanceReport{}, err
	}
	tx.state.Reports = append(tx.state.Reports, r)
	return model.CloneReport(r), nil
}

func (tx *Tx) UpdateReport(id string, mutate func(r *model.MaintenanceReport) error) (model.MaintenanceReport, error) {
	if err := tx.touch(model.CollectionReports); err != nil {
		return model.MaintenanceReport{}, err
	}
	i := indexOf(tx.state.Reports, id)
	if i < 0 {
		return model.MaintenanceReport{}, fmt.Errorf("%w: report %s", ErrNotFound, id)
	}
	previous := tx.state.Reports[i]
	next := model.CloneReport(previous)
	if err := mutate(&next); err != nil {
		return model.MaintenanceReport{}, err
	}
	next.ID = id
	if next.ContractID == previous.ContractID && next.EngineerID == previous.EngineerID {
		if err := validateReport(&next); err != nil {
			return model.MaintenanceReport{}, err
		}
	} else if err := tx.prepareReport(&next); err != nil {
		return model.MaintenanceReport{}, err
	}
	tx.state.Reports[i] = next
	return model.CloneReport(next), nil
}

func (tx *Tx) DeleteReport(id string) error {
	if err := tx.touch(model.CollectionReports); err != nil {
		return err
	}
	i := indexOf(tx.state.Reports, id)
	if i < 0 {
		return fmt.Errorf("%w: report %s", ErrNotFound, id)
	}
	tx.state.Reports = slices.Delete(tx.state.Reports, i, i+1)
	return nil
}

func (tx *Tx) prepareReport(r *model.MaintenanceReport) error {
	if err := validateReport(r); err != nil {
		return err
	}
	if indexOf(tx.state.Contracts, r.ContractID) < 0 {
		return fmt.Errorf("%w: contract %s", ErrNotFound, r.ContractID)
	}
	if indexOf(tx.state.Engineers, r.EngineerID) < 0 {
		return fmt.Errorf("%w: engineer %s", ErrNotFound, r.EngineerID)
	}
	return nil
}

// ---- bulk

// Replace overwrites the listed collections with the contents of ds.
func (tx *Tx) Replace(ds model.Dataset, collections ...model.Collection) error {
	if err := tx.touch(collections...); err != nil {
		return err
	}
	tx.state.Replace(ds, collections...)
	return nil
}

// Check validates and normalises every entity in the working copy, and
// rejects missing or duplicate ids and duplicate contract numbers.
// References between collections are not checked; readers skip dangling ones.
func (tx *Tx) Check() error {
	numbers := make(map[string]string, len(tx.state.Contracts))
	for i := range tx.state.Contracts {
		c := &tx.state.Contracts[i]
		if err := validateContract(c, nil); err != nil {
			return fmt.Errorf("contract %s: %w", c.ID, err)
		}
		if other, ok := numbers[c.ContractNumber]; ok {
			return invalid("contracts %s and %s share number %s", other, c.ID, c.ContractNumber)
		}
		numbers[c.ContractNumber] = c.ID
	}
	for i := range tx.state.Objects {
		if err := validateObject(&tx.state.Objects[i]); err != nil {
			return fmt.Errorf("object %s: %w", tx.state.Objects[i].ID, err)
		}
	}
	for i := range tx.state.Engineers {
		if err := validateEngineer(&tx.state.Engineers[i]); err != nil {
			return fmt.Errorf("engineer %s: %w", tx.state.Engineers[i].ID, err)
		}
	}
	for i := range tx.state.Tasks {
		if err := validateTask(&tx.state.Tasks[i]); err != nil {
			return fmt.Errorf("task %s: %w", tx.state.Tasks[i].ID, err)
		}
	}
	for i := range tx.state.Reports {
		if err := validateReport(&tx.state.Reports[i]); err != nil {
			return fmt.Errorf("report %s: %w", tx.state.Reports[i].ID, err)
		}
	}
	for _, k := range tx.state.KanbanTasks {
		if !k.Column.Valid() {
			return invalid("kanban card %s: unknown column %q", k.ID, k.Column)
		}
	}
	for _, k := range tx.state.ContractKanbanTasks {
		if !k.Column.Valid() {
			return invalid("contract kanban card %s: unknown column %q", k.ID, k.Column)
		}
	}

	for _, err := range []error{
		uniqueIDs(model.CollectionContracts, tx.state.Contracts),
		uniqueIDs(model.CollectionObjects, tx.state.Objects),
		uniqueIDs(model.CollectionEngineers, tx.state.Engineers),
		uniqueIDs(model.CollectionTasks, tx.state.Tasks),
		uniqueIDs(model.CollectionKanbanTasks, tx.state.KanbanTasks),
		uniqueIDs(model.CollectionContractKanbanTasks, tx.state.ContractKanbanTasks),
		uniqueIDs(model.CollectionReports, tx.state.Reports),
	} {
		if err != nil {
			return err
		}
	}
	return nil
}

func uniqueIDs[T entity](collection model.Collection, items []T) error {
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		id := item.EntityID()
		if strings.TrimSpace(id) == "" {
			return invalid("%s: entry without id", collection)
		}
		if _, ok := seen[id]; ok {
			return invalid("%s: duplicate id %s", collection, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}
