package services

import (
	"strings"

	"fund-portal/models"
	"fund-portal/utils"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
)

// Reconciler turns the historically varying submission payloads of the backend into
// models.SubmissionView. It is a pure function of its input and the lookup tables it
// was built with; it never fails.
type Reconciler struct {
	subcategoryNames map[int]string
	statuses         map[int]models.ApplicationStatus
}

// NewReconciler builds a reconciler. Both tables are optional.
func NewReconciler(subcategoryNames map[int]string, statuses map[int]models.ApplicationStatus) *Reconciler {
	return &Reconciler{subcategoryNames: subcategoryNames, statuses: statuses}
}

// Reconcile parses raw JSON and reconciles it. Invalid JSON yields the placeholder view.
func (r *Reconciler) Reconcile(raw []byte) models.SubmissionView {
	if !gjson.ValidBytes(raw) {
		return r.ReconcileResult(gjson.Result{})
	}
	return r.ReconcileResult(gjson.ParseBytes(raw))
}

// ReconcileResult reconciles an already parsed payload.
func (r *Reconciler) ReconcileResult(raw gjson.Result) models.SubmissionView {
	scope := resolveScope(raw)
	subType := detectSubmissionType(scope)
	scope.detail = resolveDetail(scope, subType)

	view := models.SubmissionView{
		SubmissionID:     probeID(scope, submissionIDFields),
		SubmissionNumber: probeString(scope, submissionNumberFields),
		SubmissionType:   subType,
		Title:            valueOrPlaceholder(probeString(scope, titleFields(subType)), models.Placeholder),
		SubcategoryID:    probeID(scope, subcategoryIDFields),
		ContactPhone:     probeString(scope, contactPhoneFields),
		Bank: models.BankInfo{
			AccountNumber: probeString(scope, bankAccountFields),
			AccountName:   probeString(scope, bankAccountNameFields),
			BankName:      probeString(scope, bankNameFields),
		},
		Announcements: models.AnnouncementRefs{
			Main:            probeID(scope, announcementFields("main_annoucement", "main_announcement")),
			ActivitySupport: probeID(scope, announcementFields("activity_support_announcement")),
			Reward:          probeID(scope, announcementFields("reward_announcement")),
			Conference:      probeID(scope, announcementFields("conference_announcement")),
			Service:         probeID(scope, announcementFields("service_announcement")),
		},
		YearID:      probeID(scope, yearIDFields),
		Attachments: []models.Attachment{},
	}
	view.SubcategoryName = r.subcategoryName(scope, view.SubcategoryID)
	view.Status = r.status(scope)

	if submitted := probeString(scope, submittedAtFields); submitted != nil {
		view.SubmittedAt = utils.ParseBackendTime(*submitted)
		view.SubmittedAtText = utils.FormatThaiDatePtr(view.SubmittedAt)
	}

	if subType == models.SubmissionTypePublicationReward {
		view.Publication = reconcilePublication(scope)
		view.RequestedAmount = view.Publication.TotalRequested
		view.ApprovedAmount = view.Publication.TotalApproved
	} else {
		view.RequestedAmount = probeAmount(scope, requestedAmountFields)
		view.ApprovedAmount = probeAmount(scope, approvedAmountFields)
	}
	view.ShowApprovedAmount = view.Status.Approved && view.ApprovedAmount != nil
	view.RequestedAmountText = utils.FormatBaht(view.RequestedAmount)
	view.ApprovedAmountText = models.Placeholder
	if view.ShowApprovedAmount {
		view.ApprovedAmountText = utils.FormatBaht(view.ApprovedAmount)
	}

	// เลขอ้างอิงประกาศแสดงเฉพาะคำร้องที่อนุมัติแล้ว
	if view.Status.Approved {
		view.AnnounceReferenceNumber = probeString(scope, announceReferenceFields)
	}

	if docs := findAttachmentList(scope); len(docs) > 0 {
		view.Attachments = make([]models.Attachment, 0, len(docs))
		for _, doc := range docs {
			view.Attachments = append(view.Attachments, parseAttachment(doc))
		}
	}

	return view
}

func resolveScope(raw gjson.Result) payloadScope {
	scope := payloadScope{root: raw, sub: raw}
	for _, candidate := range []gjson.Result{
		firstObject(raw, "submission"),
		firstObject(firstObject(raw, "data"), "submission"),
		firstObject(raw, "data"),
	} {
		if candidate.IsObject() {
			scope.sub = candidate
			break
		}
	}
	return scope
}

var (
	fundDetailKeys        = []string{"fund_application_detail", "fund_detail"}
	publicationDetailKeys = []string{"publication_reward_detail", "publication_detail"}
)

func detectSubmissionType(scope payloadScope) models.SubmissionType {
	typeFields := chain(
		inSubmission("submission_type"),
		inRoot("submission_type"),
		fieldIn(func(s payloadScope) gjson.Result { return firstObject(s.root, "details") }, "type"),
		fieldIn(func(s payloadScope) gjson.Result { return firstObject(s.sub, "details") }, "type"),
	)
	if v := probeString(scope, typeFields); v != nil {
		switch strings.ToLower(*v) {
		case string(models.SubmissionTypeFundApplication):
			return models.SubmissionTypeFundApplication
		case string(models.SubmissionTypePublicationReward):
			return models.SubmissionTypePublicationReward
		}
	}
	for _, key := range publicationDetailKeys {
		if firstObject(scope.sub, key).IsObject() {
			return models.SubmissionTypePublicationReward
		}
	}
	for _, key := range fundDetailKeys {
		if firstObject(scope.sub, key).IsObject() {
			return models.SubmissionTypeFundApplication
		}
	}
	return ""
}

func resolveDetail(scope payloadScope, subType models.SubmissionType) gjson.Result {
	var typed []string
	switch subType {
	case models.SubmissionTypePublicationReward:
		typed = append(append(typed, publicationDetailKeys...), fundDetailKeys...)
	default:
		typed = append(append(typed, fundDetailKeys...), publicationDetailKeys...)
	}

	candidates := []gjson.Result{
		firstObject(firstObject(scope.root, "details"), "data"),
		firstObject(firstObject(scope.sub, "details"), "data"),
	}
	for _, key := range typed {
		candidates = append(candidates, firstObject(scope.sub, key), firstObject(scope.root, key))
	}
	candidates = append(candidates,
		firstObject(scope.sub, "detail"),
		firstObject(scope.sub, "details"),
	)
	for _, c := range candidates {
		if c.IsObject() {
			return c
		}
	}
	return gjson.Result{}
}

var (
	submissionIDFields     = chain(inSubmission("submission_id", "id"), inRoot("submission_id"))
	submissionNumberFields = chain(inSubmission("submission_number"), inRoot("submission_number"))
	subcategoryIDFields    = chain(
		inDetail("subcategory_id"),
		inSubmission("subcategory_id"),
		inNested(detailObj, "subcategory", "subcategory_id", "id"),
		inNested(submissionObj, "subcategory", "subcategory_id", "id"),
	)
	yearIDFields       = chain(inSubmission("year_id"), inDetail("year_id"))
	submittedAtFields  = chain(inSubmission("submitted_at"), inDetail("submitted_at"))
	contactPhoneFields = chain(
		inDetail("contact_phone", "phone_number", "phone", "telephone"),
		inSubmission("contact_phone", "phone_number", "phone", "telephone"),
		inNested(submissionObj, "user", "phone_number", "phone"),
	)
	bankAccountFields = chain(
		inDetail("bank_account", "bank_account_number", "account_number"),
		inSubmission("bank_account", "bank_account_number", "account_number"),
	)
	bankAccountNameFields = chain(
		inDetail("bank_account_name", "account_name"),
		inSubmission("bank_account_name", "account_name"),
	)
	bankNameFields = chain(
		inDetail("bank_name", "bank"),
		inSubmission("bank_name", "bank"),
	)
	requestedAmountFields = chain(
		inDetail("requested_amount", "request_amount", "amount", "total_amount"),
		inSubmission("requested_amount", "request_amount", "amount", "total_amount"),
	)
	approvedAmountFields = chain(
		inDetail("approved_amount", "approve_amount", "total_approve_amount"),
		inSubmission("approved_amount", "approve_amount", "total_approve_amount"),
	)
	announceReferenceFields = chain(
		inDetail("announce_reference_number", "announcement_reference_number"),
		inSubmission("announce_reference_number", "announcement_reference_number"),
	)
)

func announcementFields(keys ...string) []accessor {
	return chain(inDetail(keys...), inSubmission(keys...))
}

// titleFields is type conditional: publication rewards are named after the paper,
// fund applications after the project.
func titleFields(subType models.SubmissionType) []accessor {
	paper := []string{"paper_title", "article_title"}
	project := []string{"project_title", "project_name"}
	generic := []string{"title"}

	var order [][]string
	switch subType {
	case models.SubmissionTypePublicationReward:
		order = [][]string{paper, generic, project}
	case models.SubmissionTypeFundApplication:
		order = [][]string{project, generic, paper}
	default:
		order = [][]string{generic, project, paper}
	}

	var accs []accessor
	for _, keys := range order {
		accs = append(accs, inDetail(keys...)...)
		accs = append(accs, inSubmission(keys...)...)
	}
	return accs
}

var (
	subcategoryNameKeys = []string{"subcategory_name", "subcategory_name_th", "subcategory_name_en", "fund_subcategory_name"}

	// Thai spellings first, then English, then generic labels.
	nestedNameKeys = []string{
		"subcategory_name_th", "category_name_th", "name_th",
		"subcategory_name_en", "category_name_en", "name_en",
		"subcategory_name", "category_name", "name", "title", "label",
	}

	nestedSubcategoryNameFields = chain(
		inNested(detailObj, "subcategory", nestedNameKeys...),
		inNested(submissionObj, "subcategory", nestedNameKeys...),
		inNested(detailObj, "fund_subcategory", nestedNameKeys...),
		inNested(submissionObj, "fund_subcategory", nestedNameKeys...),
		inNested(detailObj, "category", nestedNameKeys...),
		inNested(submissionObj, "category", nestedNameKeys...),
	)
)

// subcategoryName resolves, in order: detail name fields, flattened submission name
// fields, nested subcategory/category objects, the id lookup table, then "-".
// A "code - name" value keeps only the part before the first " - ".
func (r *Reconciler) subcategoryName(scope payloadScope, subcategoryID *int) string {
	name := probeString(scope, inDetail(subcategoryNameKeys...))
	if name == nil {
		name = probeString(scope, inSubmission(subcategoryNameKeys...))
	}
	if name == nil {
		name = probeString(scope, nestedSubcategoryNameFields)
	}
	if name == nil && subcategoryID != nil && r.subcategoryNames != nil {
		if lookedUp := strings.TrimSpace(r.subcategoryNames[*subcategoryID]); lookedUp != "" {
			name = &lookedUp
		}
	}
	if name == nil {
		return models.Placeholder
	}
	return splitDisplayName(*name)
}

// splitDisplayName keeps the first segment of a "first - rest" value.
func splitDisplayName(name string) string {
	trimmed := strings.TrimSpace(name)
	first, _, found := strings.Cut(trimmed, " - ")
	if !found {
		return trimmed
	}
	if first = strings.TrimSpace(first); first == "" {
		return trimmed
	}
	return first
}

var (
	statusIDFields = chain(
		inSubmission("status_id"),
		inNested(submissionObj, "status", "application_status_id", "status_id", "id"),
		inNested(submissionObj, "application_status", "application_status_id", "id"),
		inRoot("status_id"),
	)
	statusCodeFields = chain(
		inSubmission("status_code"),
		inNested(submissionObj, "status", "status_code", "code"),
		inNested(submissionObj, "application_status", "status_code", "code"),
	)
	statusNameFields = chain(
		inSubmission("status_name"),
		inNested(submissionObj, "status", "status_name", "name"),
		inNested(submissionObj, "application_status", "status_name", "name"),
	)
	statusScalarFields = inSubmission("status")
)

func (r *Reconciler) status(scope payloadScope) models.StatusView {
	view := models.StatusView{
		ID:   probeID(scope, statusIDFields),
		Code: probeString(scope, statusCodeFields),
		Name: probeString(scope, statusNameFields),
	}
	// Some list payloads carry "status": "approved" as a bare string.
	if view.Code == nil {
		if v := probe(scope, statusScalarFields); v.Type == gjson.String {
			code := strings.TrimSpace(v.Str)
			view.Code = &code
		}
	}
	if view.ID != nil && r.statuses != nil {
		if known, ok := r.statuses[*view.ID]; ok {
			if view.Code == nil && known.StatusCode != "" {
				code := known.StatusCode
				view.Code = &code
			}
			if view.Name == nil && known.StatusName != "" {
				name := known.StatusName
				view.Name = &name
			}
		}
	}
	view.Classification = ClassifyStatus(view.ID, view.Code, view.Name)
	return view
}

func reconcilePublication(scope payloadScope) *models.PublicationView {
	pub := &models.PublicationView{
		PaperTitle:   probeString(scope, chain(inDetail("paper_title", "article_title"), inSubmission("paper_title", "article_title"))),
		JournalName:  probeString(scope, chain(inDetail("journal_name", "journal"), inSubmission("journal_name", "journal"))),
		DOI:          probeString(scope, chain(inDetail("doi"), fieldIn(detailObj, "DOI"), inSubmission("doi"))),
		Quartile:     probeString(scope, chain(inDetail("quartile", "journal_quartile", "quartile_code"), inSubmission("quartile", "journal_quartile"))),
		ImpactFactor: probeAmount(scope, chain(inDetail("impact_factor"), inSubmission("impact_factor"))),
		Reward: models.AmountPair{
			Requested: probeAmount(scope, inDetail("reward_amount", "reward_request_amount")),
			Approved:  probeAmount(scope, inDetail("reward_approve_amount", "reward_approved_amount")),
		},
		RevisionFee: models.AmountPair{
			Requested: probeAmount(scope, inDetail("revision_fee", "revision_fee_amount")),
			Approved:  probeAmount(scope, inDetail("revision_fee_approve_amount", "revision_fee_approved_amount")),
		},
		PublicationFee: models.AmountPair{
			Requested: probeAmount(scope, inDetail("publication_fee", "publication_fee_amount")),
			Approved:  probeAmount(scope, inDetail("publication_fee_approve_amount", "publication_fee_approved_amount")),
		},
		ExternalFundingAmount: probeAmount(scope, chain(inDetail("external_funding_amount"), inSubmission("external_funding_amount"))),
	}

	pub.TotalRequested = probeAmount(scope, chain(inDetail("total_amount", "requested_amount"), inSubmission("total_amount", "requested_amount")))
	if pub.TotalRequested == nil {
		pub.TotalRequested = netTotal(pub.ExternalFundingAmount, pub.Reward.Requested, pub.RevisionFee.Requested, pub.PublicationFee.Requested)
	}
	pub.TotalApproved = probeAmount(scope, chain(
		inDetail("total_approve_amount", "total_approved_amount", "approved_amount"),
		inSubmission("total_approve_amount", "total_approved_amount", "approved_amount"),
	))
	if pub.TotalApproved == nil {
		pub.TotalApproved = netTotal(nil, pub.Reward.Approved, pub.RevisionFee.Approved, pub.PublicationFee.Approved)
	}
	return pub
}

// netTotal sums the known parts and deducts the external funding offset, floored at zero.
// nil when no part is known.
func netTotal(offset *float64, parts ...*float64) *float64 {
	sum := decimal.Zero
	known := false
	for _, p := range parts {
		if p == nil {
			continue
		}
		known = true
		sum = sum.Add(decimal.NewFromFloat(*p))
	}
	if !known {
		return nil
	}
	if offset != nil {
		sum = sum.Sub(decimal.NewFromFloat(*offset))
	}
	if sum.IsNegative() {
		sum = decimal.Zero
	}
	total := sum.InexactFloat64()
	return &total
}
