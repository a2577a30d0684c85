package mailsource

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"

	"mailbrief/internal/config"
	"mailbrief/internal/extract"
	"mailbrief/internal/model"
)

const snippetLength = 120

// IMAPSource implements Source against an IMAP server using plain
// login credentials from config.
type IMAPSource struct {
	cfg config.IMAPConfig
}

func NewIMAPSource(cfg config.IMAPConfig) *IMAPSource {
	return &IMAPSource{cfg: cfg}
}

func (s *IMAPSource) connect(_ context.Context) (*imapclient.Client, error) {
	addr := s.cfg.Host + ":" + s.cfg.Port

	var client *imapclient.Client
	var err error
	if s.cfg.TLS {
		client, err = imapclient.DialTLS(addr, nil)
	} else {
		client, err = imapclient.DialStartTLS(addr, nil)
	}
	if err != nil {
		return nil, &SourceError{Op: "connect", Err: err}
	}

	if err := client.Login(s.cfg.Username, s.cfg.Password).Wait(); err != nil {
		_ = client.Logout().Wait()
		return nil, &SourceError{Op: "login", Err: err}
	}
	return client, nil
}

// FetchRecent selects INBOX and fetches the max highest sequence
// numbers with envelope and a peeked body section. Results are newest
// first. Any connection, auth or fetch failure is a *SourceError.
func (s *IMAPSource) FetchRecent(ctx context.Context, max int) ([]model.RawMessage, error) {
	client, err := s.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = client.Logout().Wait() }()

	selected, err := client.Select("INBOX", nil).Wait()
	if err != nil {
		return nil, &SourceError{Op: "select", Err: err}
	}

	total := int(selected.NumMessages)
	if total == 0 {
		return nil, nil
	}
	first := total - max + 1
	if first < 1 {
		first = 1
	}

	nums := make([]uint32, 0, total-first+1)
	for n := first; n <= total; n++ {
		nums = append(nums, uint32(n))
	}
	seqSet := imap.SeqSetNum(nums...)

	bodySection := &imap.FetchItemBodySection{Peek: true}
	fetchCmd := client.Fetch(seqSet, &imap.FetchOptions{
		Envelope:    true,
		UID:         true,
		BodySection: []*imap.FetchItemBodySection{bodySection},
	})
	defer fetchCmd.Close()

	type fetched struct {
		seq uint32
		msg model.RawMessage
	}
	var results []fetched
	for {
		msg := fetchCmd.Next()
		if msg == nil {
			break
		}
		buf, err := msg.Collect()
		if err != nil {
			continue
		}
		results = append(results, fetched{
			seq: buf.SeqNum,
			msg: rawMessageFromBuffer(buf, bodySection),
		})
	}
	if err := fetchCmd.Close(); err != nil {
		return nil, &SourceError{Op: "fetch", Err: err}
	}

	// 最新的排前面
	sort.Slice(results, func(i, j int) bool { return results[i].seq > results[j].seq })

	messages := make([]model.RawMessage, 0, len(results))
	for _, r := range results {
		messages = append(messages, r.msg)
	}
	return messages, nil
}

func rawMessageFromBuffer(buf *imapclient.FetchMessageBuffer, section *imap.FetchItemBodySection) model.RawMessage {
	msg := model.RawMessage{
		ID:  imapID(buf),
		Raw: buf.FindBodySection(section),
	}

	if buf.Envelope != nil {
		msg.Subject = buf.Envelope.Subject
		if !buf.Envelope.Date.IsZero() {
			msg.Date = buf.Envelope.Date.Format(time.RFC1123Z)
		}
		if len(buf.Envelope.From) > 0 {
			from := buf.Envelope.From[0]
			if from.Name != "" {
				msg.From = from.Name + " <" + from.Addr() + ">"
			} else {
				msg.From = from.Addr()
			}
		}
	}

	// IMAP 没有 snippet，这里从正文派生一个
	if parsed, err := extract.Parse(msg.Raw); err == nil {
		msg.Snippet = extract.Snippet(parsed.Body, snippetLength)
		if msg.Subject == "" {
			msg.Subject = parsed.Subject
		}
	}
	return msg
}

func imapID(buf *imapclient.FetchMessageBuffer) string {
	if buf.UID != 0 {
		return "uid-" + strconv.FormatUint(uint64(buf.UID), 10)
	}
	return "seq-" + strconv.FormatUint(uint64(buf.SeqNum), 10)
}
