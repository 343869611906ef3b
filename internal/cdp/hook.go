package cdp

// navBinding is the name of the CDP binding the injected hook calls with
// serialized navigation signals.
const navBinding = "__trailNav"

// navHookScript is installed on every new document. It patches the history
// API's push and replace methods (calling through to the original first, so
// browser behavior is preserved), listens for popstate, and runs a
// MutationObserver on the document body as a catch-all for frameworks that
// change the URL through neither route. Each detector reports through the
// binding; the Go side decides what counts as a navigation.
const navHookScript = `(() => {
	if (window.__trailHookInstalled) return;
	window.__trailHookInstalled = true;

	const notify = (source, url) => {
		try {
			window.` + navBinding + `(JSON.stringify({
				source: source,
				url: url || "",
				location: window.location.href,
			}));
		} catch (e) {}
	};

	const wrap = (name) => {
		const original = history[name].bind(history);
		history[name] = function (state, title, url) {
			const result = original(state, title, url);
			let absolute = "";
			if (url !== undefined && url !== null) {
				try { absolute = String(new URL(url, window.location.href)); } catch (e) {}
			}
			notify(name, absolute);
			return result;
		};
	};
	wrap("pushState");
	wrap("replaceState");

	window.addEventListener("popstate", () => notify("popstate", ""));

	let lastSeen = window.location.href;
	const observer = new MutationObserver(() => {
		if (window.location.href === lastSeen) return;
		lastSeen = window.location.href;
		notify("mutation", "");
	});
	const start = () => {
		if (document.body) {
			observer.observe(document.body, { childList: true, subtree: true });
		}
	};
	if (document.body) {
		start();
	} else {
		window.addEventListener("DOMContentLoaded", start);
	}
})();`
