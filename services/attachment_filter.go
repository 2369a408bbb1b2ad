package services

import (
	"regexp"
	"strings"

	"fund-portal/models"
	"fund-portal/utils"

	"github.com/tidwall/gjson"
)

// MergedFormDisplayName is the document name the backend gives its generated merged form.
const MergedFormDisplayName = "แบบฟอร์มคำร้องรวม (merged pdf)"

const mergedSubmissionsSegment = "merge_submissions"

var mergedDocumentPattern = regexp.MustCompile(`(?i)_merged_document(?:_\d+)?\.pdf$`)

// IsSystemMergedArtifact reports whether a document is a merged PDF the backend generated.
// Every name and path candidate is checked; any single match hides the document.
func IsSystemMergedArtifact(doc models.Attachment) bool {
	sentinel := strings.ToLower(strings.TrimSpace(MergedFormDisplayName))

	names := append([]string{doc.OriginalName, doc.DocumentTypeName}, doc.NameCandidates...)
	for _, name := range names {
		normalized := strings.ToLower(strings.TrimSpace(name))
		if normalized == "" {
			continue
		}
		if normalized == sentinel || mergedDocumentPattern.MatchString(normalized) {
			return true
		}
	}

	paths := append([]string{doc.StoredPath}, doc.PathCandidates...)
	for _, p := range paths {
		normalized := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(p), "\\", "/"))
		if normalized == "" {
			continue
		}
		for _, segment := range strings.Split(normalized, "/") {
			if segment == mergedSubmissionsSegment {
				return true
			}
		}
		if mergedDocumentPattern.MatchString(normalized) {
			return true
		}
	}
	return false
}

// FilterVisible drops system merged artifacts, keeping the order of everything else.
func FilterVisible(docs []models.Attachment) []models.Attachment {
	visible := make([]models.Attachment, 0, len(docs))
	for _, doc := range docs {
		if IsSystemMergedArtifact(doc) {
			continue
		}
		visible = append(visible, doc)
	}
	return visible
}

var (
	attachmentNameKeys = []string{"original_name", "original_filename", "file_name", "filename", "document_name", "name"}
	attachmentPathKeys = []string{"file_path", "stored_path", "path", "file_url", "url"}
	attachmentListKeys = []string{"documents", "attachments", "submission_documents", "files"}
)

// findAttachmentList locates the document array of a submission payload.
func findAttachmentList(scope payloadScope) []gjson.Result {
	for _, obj := range []gjson.Result{scope.root, scope.sub, firstObject(scope.root, "data")} {
		if !obj.IsObject() {
			continue
		}
		for _, key := range attachmentListKeys {
			for _, spelling := range keySpellings(key) {
				if list := obj.Get(gjson.Escape(spelling)); list.IsArray() {
					return list.Array()
				}
			}
		}
	}
	return nil
}

// ParseAttachments reads a documents endpoint response (bare array or wrapped).
func ParseAttachments(body []byte) []models.Attachment {
	if !gjson.ValidBytes(body) {
		return []models.Attachment{}
	}
	root := gjson.ParseBytes(body)
	var items []gjson.Result
	if root.IsArray() {
		items = root.Array()
	} else {
		items = findAttachmentList(payloadScope{root: root, sub: firstObject(root, "data")})
		if items == nil {
			if data := root.Get("data"); data.IsArray() {
				items = data.Array()
			}
		}
	}
	out := make([]models.Attachment, 0, len(items))
	for _, item := range items {
		if item.IsObject() {
			out = append(out, parseAttachment(item))
		}
	}
	return out
}

// collectStrings gathers every non-empty value of keys on obj and on its nested
// "file" and "document" objects.
func collectStrings(obj gjson.Result, keys []string) []string {
	var values []string
	seen := map[string]struct{}{}
	scan := func(o gjson.Result) {
		if !o.IsObject() {
			return
		}
		for _, key := range keys {
			for _, spelling := range keySpellings(key) {
				v := o.Get(gjson.Escape(spelling))
				if v.Type != gjson.String {
					continue
				}
				s := strings.TrimSpace(v.Str)
				if s == "" {
					continue
				}
				if _, ok := seen[s]; ok {
					continue
				}
				seen[s] = struct{}{}
				values = append(values, s)
			}
		}
	}
	scan(obj)
	scan(firstObject(obj, "file"))
	scan(firstObject(obj, "document"))
	return values
}

func parseAttachment(item gjson.Result) models.Attachment {
	scope := payloadScope{root: item, sub: item, detail: firstObject(item, "file")}
	nestedDocument := func(keys ...string) []accessor { return inNested(submissionObj, "document", keys...) }

	att := models.Attachment{
		DocumentID:     probeID(scope, chain(inSubmission("document_id"), nestedDocument("document_id"))),
		FileID:         probeID(scope, chain(inSubmission("file_id"), inDetail("file_id", "id"), nestedDocument("file_id"))),
		NameCandidates: collectStrings(item, attachmentNameKeys),
		PathCandidates: collectStrings(item, attachmentPathKeys),
	}

	if len(att.NameCandidates) > 0 {
		att.OriginalName = att.NameCandidates[0]
	}
	if len(att.PathCandidates) > 0 {
		att.StoredPath = att.PathCandidates[0]
	}

	typeName := probeString(scope, chain(
		inSubmission("document_type_name"),
		inNested(submissionObj, "document_type", "document_type_name", "name"),
		inSubmission("document_type"),
	))
	if typeName != nil {
		att.DocumentTypeName = *typeName
	}
	if mime := probeString(scope, chain(inSubmission("mime_type"), inDetail("mime_type"))); mime != nil {
		att.MimeType = *mime
	}
	if size := probeAmount(scope, chain(inSubmission("file_size", "size"), inDetail("file_size", "size"))); size != nil {
		n := int64(*size)
		att.Size = &n
	}
	if public := probe(scope, chain(inSubmission("is_public"), inDetail("is_public"))); public.Exists() {
		att.IsPublic = utils.ParseBool(public.Value())
	}
	att.Openable = att.IsOpenable()
	return att
}
