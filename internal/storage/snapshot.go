package storage

import "context"

// Snapshot is the whole persisted state. Field names match the data file layout.
type Snapshot struct {
	Operators  []Operator                `json:"operarias"`
	Orders     []Order                   `json:"pedidos"`
	Records    []Record                  `json:"registros"`
	Garments   []Garment                 `json:"prendas"`
	Seams      []Seam                    `json:"costuras"`
	Templates  map[int64][]TemplateEntry `json:"plantillas"`
	Machines   []string                  `json:"maquinas"`
	StaffUsers []StaffUser               `json:"usuarios"`

	OperatorCounter  int64 `json:"operariaIdCounter"`
	OrderCounter     int64 `json:"pedidoIdCounter"`
	RecordCounter    int64 `json:"registroIdCounter"`
	SeamCounter      int64 `json:"costuraIdCounter"`
	OperationCounter int64 `json:"operacionIdCounter"`
	GarmentCounter   int64 `json:"prendaIdCounter"`
}

// Backend persists and restores snapshots. Load returns nil, nil when nothing is stored.
type Backend interface {
	Name() string
	Load(ctx context.Context) (*Snapshot, error)
	Save(ctx context.Context, snap *Snapshot) error
}

// Empty reports whether the snapshot carries no data at all.
func (s *Snapshot) Empty() bool {
	return s == nil || (len(s.Operators) == 0 && len(s.Orders) == 0 && len(s.Records) == 0 &&
		len(s.Garments) == 0 && len(s.StaffUsers) == 0)
}

// Normalize fills nil collections, gives records and orders written without
// status or source their defaults, and lifts every counter to at least max(id)+1.
func (s *Snapshot) Normalize() {
	if s.Operators == nil {
		s.Operators = []Operator{}
	}
	if s.Orders == nil {
		s.Orders = []Order{}
	}
	if s.Records == nil {
		s.Records = []Record{}
	}
	if s.Garments == nil {
		s.Garments = []Garment{}
	}
	if s.Seams == nil {
		s.Seams = []Seam{}
	}
	if s.Templates == nil {
		s.Templates = map[int64][]TemplateEntry{}
	}
	if s.Machines == nil {
		s.Machines = []string{}
	}
	if s.StaffUsers == nil {
		s.StaffUsers = []StaffUser{}
	}

	for i := range s.Records {
		if s.Records[i].Source == "" {
			s.Records[i].Source = SourceOperator
		}
		if s.Records[i].PaymentStatus == "" {
			s.Records[i].PaymentStatus = PaymentPending
		}
	}
	for i := range s.Orders {
		if s.Orders[i].Status == "" {
			s.Orders[i].Status = OrderActive
		}
	}

	var maxOperator, maxOrder, maxRecord, maxSeam, maxOperation, maxGarment int64
	for _, o := range s.Operators {
		maxOperator = max(maxOperator, o.ID)
	}
	for _, o := range s.Orders {
		maxOrder = max(maxOrder, o.ID)
		for _, item := range o.Items {
			for _, op := range item.Operations {
				maxOperation = max(maxOperation, op.ID)
			}
		}
	}
	for _, r := range s.Records {
		maxRecord = max(maxRecord, r.ID)
		if r.OperationID != nil {
			maxOperation = max(maxOperation, *r.OperationID)
		}
	}
	for _, c := range s.Seams {
		maxSeam = max(maxSeam, c.ID)
	}
	for _, g := range s.Garments {
		maxGarment = max(maxGarment, g.ID)
	}

	s.OperatorCounter = max(s.OperatorCounter, maxOperator+1)
	s.OrderCounter = max(s.OrderCounter, maxOrder+1)
	s.RecordCounter = max(s.RecordCounter, maxRecord+1)
	s.SeamCounter = max(s.SeamCounter, maxSeam+1)
	s.OperationCounter = max(s.OperationCounter, maxOperation+1)
	s.GarmentCounter = max(s.GarmentCounter, maxGarment+1)
}

// Clone returns a deep copy.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	c := *s
	c.Operators = append([]Operator(nil), s.Operators...)
	c.Orders = make([]Order, len(s.Orders))
	for i, o := range s.Orders {
		c.Orders[i] = o.Clone()
	}
	c.Records = make([]Record, len(s.Records))
	for i, r := range s.Records {
		c.Records[i] = r.Clone()
	}
	c.Garments = append([]Garment(nil), s.Garments...)
	c.Seams = append([]Seam(nil), s.Seams...)
	c.Machines = append([]string(nil), s.Machines...)
	c.StaffUsers = append([]StaffUser(nil), s.StaffUsers...)
	if s.Templates != nil {
		c.Templates = make(map[int64][]TemplateEntry, len(s.Templates))
		for k, v := range s.Templates {
			c.Templates[k] = append([]TemplateEntry(nil), v...)
		}
	}
	return &c
}
