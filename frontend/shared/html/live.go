package html

import "fmt"

// LiveReloadScript connects to the event socket and reloads the page when a
// row-change event for the given job and kind arrives, so a tab that did not
// trigger the change still catches up before its next poll.
func LiveReloadScript(jobKey, kind string) string {
	return fmt.Sprintf(`<script>
(function () {
  var jobKey = %q;
  var kind = %q;
  function connect() {
    var proto = location.protocol === "https:" ? "wss://" : "ws://";
    var ws = new WebSocket(proto + location.host + "/ws");
    ws.onmessage = function (ev) {
      try {
        var e = JSON.parse(ev.data);
        if (e.job_key === jobKey && (!kind || e.kind === kind)) location.reload();
      } catch (err) {}
    };
    ws.onclose = function () { setTimeout(connect, 3000); };
  }
  connect();
})();
</script>`, jobKey, kind)
}
