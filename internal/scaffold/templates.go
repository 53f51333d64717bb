package scaffold

import "text/template"

// =============================================================================
// POPUP HTML FRAGMENTS
// =============================================================================

const popupHTMLHeader = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Extension Popup</title>
    <link rel="stylesheet" href="styles.css">
</head>
<body>
    <div class="container">
        <h1>Generated Extension</h1>
`

const popupDateSection = `        <div class="content">
            <h2>Today's Date</h2>
            <p id="date-display"></p>
        </div>
`

const popupTimeSection = `        <div class="content">
            <h2>Current Time</h2>
            <p id="time-display"></p>
        </div>
`

const popupTimerSection = `        <div class="content">
            <h2>Timer</h2>
            <p id="timer-display">25:00</p>
            <button id="start-timer">Start</button>
            <button id="stop-timer">Stop</button>
            <button id="reset-timer">Reset</button>
        </div>
`

const popupInputSection = `        <div class="content">
            <input type="text" id="user-input" placeholder="Enter value...">
            <button id="submit-btn">Submit</button>
        </div>
`

const popupEmailSection = `        <div class="content">
            <h2>Email Extractor</h2>
            <button id="extract-btn">Extract Emails</button>
            <div id="email-list"></div>
            <p id="email-count"></p>
        </div>
`

const popupActionSection = `        <div class="content">
            <button id="action-btn">Execute Action</button>
            <p id="status"></p>
        </div>
`

const popupDefaultSection = `        <div class="content">
            <p>Extension is active and ready!</p>
            <button id="action-btn">Click Me</button>
        </div>
`

const popupHTMLFooter = `    </div>
    <script src="popup.js"></script>
</body>
</html>`

// =============================================================================
// POPUP SCRIPT FRAGMENTS
// =============================================================================

const popupJSHeader = `// Popup script for generated extension

document.addEventListener('DOMContentLoaded', function() {
`

const popupJSDate = `    // Display today's date
    const dateDisplay = document.getElementById('date-display');
    if (dateDisplay) {
        const today = new Date();
        const options = { weekday: 'long', year: 'numeric', month: 'long', day: 'numeric' };
        dateDisplay.textContent = today.toLocaleDateString('en-US', options);
    }

`

const popupJSTime = `    // Display current time
    const timeDisplay = document.getElementById('time-display');
    if (timeDisplay) {
        function updateTime() {
            const now = new Date();
            timeDisplay.textContent = now.toLocaleTimeString();
        }
        updateTime();
        setInterval(updateTime, 1000);
    }

`

const popupJSTimer = `    // Pomodoro timer logic
    let timerInterval;
    let timeLeft = 25 * 60; // 25 minutes in seconds

    const timerDisplay = document.getElementById('timer-display');
    const startBtn = document.getElementById('start-timer');
    const stopBtn = document.getElementById('stop-timer');
    const resetBtn = document.getElementById('reset-timer');

    function updateDisplay() {
        const minutes = Math.floor(timeLeft / 60);
        const seconds = timeLeft % 60;
        timerDisplay.textContent = ` + "`${minutes.toString().padStart(2, '0')}:${seconds.toString().padStart(2, '0')}`" + `;
    }

    if (startBtn) {
        startBtn.addEventListener('click', function() {
            if (!timerInterval) {
                timerInterval = setInterval(function() {
                    timeLeft--;
                    updateDisplay();

                    if (timeLeft <= 0) {
                        clearInterval(timerInterval);
                        timerInterval = null;
                        alert('Time is up!');
                        timeLeft = 25 * 60;
                        updateDisplay();
                    }
                }, 1000);
            }
        });
    }

    if (stopBtn) {
        stopBtn.addEventListener('click', function() {
            clearInterval(timerInterval);
            timerInterval = null;
        });
    }

    if (resetBtn) {
        resetBtn.addEventListener('click', function() {
            clearInterval(timerInterval);
            timerInterval = null;
            timeLeft = 25 * 60;
            updateDisplay();
        });
    }

`

const popupJSEmail = `    // Email extraction button
    const extractBtn = document.getElementById('extract-btn');
    if (extractBtn) {
        extractBtn.addEventListener('click', async function() {
            const [tab] = await chrome.tabs.query({ active: true, currentWindow: true });

            chrome.tabs.sendMessage(tab.id, { action: 'getEmails' }, function(response) {
                const emailList = document.getElementById('email-list');
                const emailCount = document.getElementById('email-count');

                if (response && response.emails && response.emails.length > 0) {
                    let html = '<ul style="text-align: left; margin-top: 10px;">';
                    response.emails.forEach(function(email) {
                        html += '<li style="padding: 5px; word-break: break-all;">' + email + '</li>';
                    });
                    html += '</ul>';
                    emailList.innerHTML = html;
                    emailCount.textContent = 'Found ' + response.emails.length + ' email(s)';
                } else {
                    emailList.innerHTML = '<p style="margin-top: 10px;">No emails found on this page.</p>';
                    emailCount.textContent = '';
                }
            });
        });
    }

`

const popupJSContentButton = `    // Action button to interact with the content script
    const actionBtn = document.getElementById('action-btn');
    if (actionBtn) {
        actionBtn.addEventListener('click', async function() {
            const [tab] = await chrome.tabs.query({ active: true, currentWindow: true });

            chrome.tabs.sendMessage(tab.id, { action: 'execute' }, function(response) {
                const status = document.getElementById('status');
                if (status) {
                    status.textContent = response ? response.message : 'Action executed!';
                }
            });
        });
    }

`

const popupJSLocalButton = `    // Generic button click handler
    const actionBtn = document.getElementById('action-btn');
    if (actionBtn) {
        actionBtn.addEventListener('click', function() {
            const status = document.getElementById('status');
            if (status) {
                status.textContent = 'Button clicked!';
            }
            console.log('Action button clicked');
        });
    }

`

const popupJSFooter = `});
`

// =============================================================================
// CONTENT SCRIPT FRAGMENTS
// =============================================================================

const contentJSHeader = `// Content script - runs on web pages

console.log('Content script loaded');

`

const contentJSHighlightPhones = `// Highlight all phone numbers on the page
function highlightPhoneNumbers() {
    const phoneRegex = /\b\d{3}[-.]?\d{3}[-.]?\d{4}\b/g;
    const walker = document.createTreeWalker(
        document.body,
        NodeFilter.SHOW_TEXT,
        null,
        false
    );

    const textNodes = [];
    while (walker.nextNode()) {
        if (walker.currentNode.parentNode.nodeName !== 'SCRIPT' &&
            walker.currentNode.parentNode.nodeName !== 'STYLE') {
            textNodes.push(walker.currentNode);
        }
    }

    textNodes.forEach(function(node) {
        const text = node.textContent;
        if (phoneRegex.test(text)) {
            const span = document.createElement('span');
            span.innerHTML = text.replace(phoneRegex, '<mark style="background-color: yellow; padding: 2px;">$&</mark>');
            node.parentNode.replaceChild(span, node);
        }
    });
}

highlightPhoneNumbers();

`

const contentJSExtractEmails = `// Extract all email addresses and send to popup
function extractEmails() {
    const emailRegex = /\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Z|a-z]{2,}\b/g;
    const bodyText = document.body.innerText;
    const emails = bodyText.match(emailRegex) || [];
    console.log('Found emails:', emails);
    return emails;
}

// Listen for requests from popup
chrome.runtime.onMessage.addListener(function(request, sender, sendResponse) {
    if (request.action === 'getEmails') {
        const emails = extractEmails();
        sendResponse({ emails: emails });
    }
    return true;
});

// Auto-extract on page load
const foundEmails = extractEmails();
console.log('Extracted', foundEmails.length, 'emails from page');

`

const contentJSRecolor = `// Listen for messages from popup
chrome.runtime.onMessage.addListener(function(request, sender, sendResponse) {
    if (request.action === 'execute') {
        // Change all text to blue
        document.querySelectorAll('*').forEach(function(element) {
            element.style.color = 'blue';
        });
        sendResponse({ message: 'Text color changed to blue!' });
    }
    return true;
});

`

const contentJSGenericStub = `// Generic content script functionality
chrome.runtime.onMessage.addListener(function(request, sender, sendResponse) {
    if (request.action === 'execute') {
        console.log('Content script received message:', request);
        // Add your custom logic here
        sendResponse({ message: 'Content script executed successfully!' });
    }
    return true;
});

`

// =============================================================================
// BACKGROUND SCRIPT FRAGMENTS
// =============================================================================

const backgroundJSHeader = `// Background service worker

console.log('Background service worker loaded');

`

// backgroundBlockTpl is the only parameterized fragment: the pattern list
// depends on which named sites the description mentions.
var backgroundBlockTpl = template.Must(template.New("background_block").Parse(
	`// Block specific websites
const blockedSites = {{.Sites}};

chrome.webRequest.onBeforeRequest.addListener(
    function(details) {
        return { cancel: true };
    },
    { urls: blockedSites },
    ["blocking"]
);

console.log('Blocking these sites:', blockedSites);

`))

const backgroundJSAlarm = `// Timer alarm functionality
chrome.alarms.create('timerAlarm', {
    delayInMinutes: 25,
    periodInMinutes: 25
});

chrome.alarms.onAlarm.addListener(function(alarm) {
    if (alarm.name === 'timerAlarm') {
        chrome.notifications.create({
            type: 'basic',
            iconUrl: 'icon.png',
            title: 'Timer Alert',
            message: 'Time is up! Take a break.',
            priority: 2
        });
    }
});

`

const backgroundJSMonitor = `// Monitor and track URLs
chrome.tabs.onUpdated.addListener(function(tabId, changeInfo, tab) {
    if (changeInfo.status === 'complete' && tab.url) {
        console.log('Visited URL:', tab.url);

        chrome.storage.local.get(['visitedUrls'], function(result) {
            const urls = result.visitedUrls || [];
            urls.push({
                url: tab.url,
                timestamp: new Date().toISOString()
            });
            chrome.storage.local.set({ visitedUrls: urls });
        });
    }
});

`

const backgroundJSDefault = `// Extension installation
chrome.runtime.onInstalled.addListener(function() {
    console.log('Extension installed successfully');
});

// Listen for messages from content scripts or popup
chrome.runtime.onMessage.addListener(function(request, sender, sendResponse) {
    console.log('Background received message:', request);
    sendResponse({ status: 'Message received by background' });
    return true;
});

`

// =============================================================================
// STYLESHEET
// =============================================================================

const stylesCSS = `/* Styles for extension popup */

* {
    margin: 0;
    padding: 0;
    box-sizing: border-box;
}

body {
    width: 300px;
    min-height: 200px;
    font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif;
    background: linear-gradient(135deg, #667eea 0%, #764ba2 100%);
    color: #fff;
}

.container {
    padding: 20px;
}

h1 {
    font-size: 24px;
    margin-bottom: 15px;
    text-align: center;
}

h2 {
    font-size: 18px;
    margin-bottom: 10px;
}

.content {
    background: rgba(255, 255, 255, 0.1);
    padding: 15px;
    border-radius: 8px;
    margin-bottom: 10px;
    backdrop-filter: blur(10px);
}

button {
    background: #fff;
    color: #667eea;
    border: none;
    padding: 10px 20px;
    border-radius: 5px;
    cursor: pointer;
    font-size: 14px;
    font-weight: 600;
    margin: 5px;
    transition: all 0.3s ease;
}

button:hover {
    background: #f0f0f0;
    transform: translateY(-2px);
    box-shadow: 0 4px 8px rgba(0, 0, 0, 0.2);
}

button:active {
    transform: translateY(0);
}

input[type="text"] {
    width: 100%;
    padding: 10px;
    border: none;
    border-radius: 5px;
    margin-bottom: 10px;
    font-size: 14px;
}

p {
    font-size: 16px;
    line-height: 1.5;
}

#date-display,
#time-display,
#timer-display {
    font-size: 20px;
    font-weight: 700;
    text-align: center;
    padding: 10px;
    background: rgba(255, 255, 255, 0.2);
    border-radius: 5px;
    margin: 10px 0;
}

#status {
    margin-top: 10px;
    font-size: 14px;
    text-align: center;
    font-style: italic;
}
`
